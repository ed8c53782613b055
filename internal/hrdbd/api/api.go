// Package api exposes hrdbd's load-session lifecycle and query
// interface over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/jimyag/hrdb/internal/hrd"
	"github.com/jimyag/hrdb/internal/hrdbd/loader"
)

// API wires the HTTP surface on top of a loader.Session. It additionally
// keeps the most recently loaded *hrd.DB per session ID in memory, so
// the query endpoints can serve FindEnum/FindBitset/FindDomain without
// re-parsing on every request.
type API struct {
	engine *gin.Engine
	server *http.Server

	loaderSession *loader.Session

	mu     sync.RWMutex
	dbs    map[string]*hrd.DB
	latest string
}

// New builds the gin engine, registers routes, and binds the listener.
func New(loaderSession *loader.Session, address string) (*API, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.Default()
	a := &API{
		engine:        engine,
		loaderSession: loaderSession,
		dbs:           make(map[string]*hrd.DB),
	}

	apiGroup := engine.Group("/api")
	a.registerSessionRoutes(apiGroup)
	a.registerQueryRoutes(apiGroup)

	printRoutes(engine)

	a.server = &http.Server{
		Addr:    address,
		Handler: engine,
	}
	return a, nil
}

// printRoutes writes the registered method/path pairs to stdout, mirroring
// the teacher's startup banner without its debug-route noise.
func printRoutes(engine *gin.Engine) {
	routes := engine.Routes()
	if len(routes) == 0 {
		return
	}

	fmt.Fprintf(os.Stdout, "\n[API Routes]\n")
	fmt.Fprintf(os.Stdout, "Method   Path\n")
	fmt.Fprintf(os.Stdout, "----------------------------\n")
	for _, route := range routes {
		fmt.Fprintf(os.Stdout, "%-8s %s\n", route.Method, route.Path)
	}
	fmt.Fprintf(os.Stdout, "\n")
}

// rememberDB associates sessionID with db and marks it the latest
// session, so a query request that omits ?session= falls back to it.
func (a *API) rememberDB(sessionID string, db *hrd.DB) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dbs[sessionID] = db
	a.latest = sessionID
}

// dbFor resolves sessionID to its in-memory database, falling back to
// the most recently loaded one when sessionID is empty.
func (a *API) dbFor(sessionID string) (*hrd.DB, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if sessionID == "" {
		sessionID = a.latest
	}
	db, ok := a.dbs[sessionID]
	return db, ok
}

func (a *API) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name implements grace.Grace.
func (a *API) Name() string {
	return "hrdbd API"
}
