// Package hrdbd provides the hrdbd server's main entry point and
// initialization logic.
package hrdbd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jimmicro/grace"
	"github.com/rs/zerolog"

	"github.com/jimyag/hrdb/internal/hrdbd/api"
	"github.com/jimyag/hrdb/internal/hrdbd/config"
	"github.com/jimyag/hrdb/internal/hrdbd/loader"
	"github.com/jimyag/hrdb/internal/hrdbd/repository"
)

// Server owns hrdbd's repository, loader and HTTP API for the process
// lifetime.
type Server struct {
	cfg        *config.Config
	api        *api.API
	repository *repository.Repository
}

// New wires up the repository, loader session and API for cfg. If
// cfg.HRDRoot is set, an initial load runs before the server starts
// serving and is recorded in the session history. Its database is not
// handed to the API, so the query endpoints report no session until a
// load request arrives over HTTP.
func New(cfg *config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	dbPath := filepath.Join(cfg.DataDir, "hrdbd.db")
	repo, err := repository.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}
	logger.Info().Str("db_path", dbPath).Msg("session-history database initialized")

	loaderSession := loader.New(repo, &logger)

	apiInstance, err := api.New(loaderSession, cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("create API: %w", err)
	}

	if cfg.HRDRoot != "" {
		logger.Info().Str("hrd_root", cfg.HRDRoot).Msg("running initial load")
		if _, err := loaderSession.Load(context.Background(), loader.Request{
			HRDRoot:   cfg.HRDRoot,
			BIOSImage: cfg.BIOSImage,
		}); err != nil {
			return nil, fmt.Errorf("initial load: %w", err)
		}
	}

	server := &Server{
		cfg:        cfg,
		api:        apiInstance,
		repository: repo,
	}
	return server, nil
}

// Run starts the API server under a grace.Shepherd, returning once the
// shepherd's managed services have stopped.
func (s *Server) Run(ctx context.Context) error {
	services := []grace.Grace{
		s.api,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return nil
}

// Shutdown stops the API server and closes the repository.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.api.Shutdown(ctx); err != nil {
		return err
	}
	return s.repository.Close()
}

// Name implements grace.Grace.
func (s *Server) Name() string {
	return "hrdbd Server"
}

// zerologLogger adapts zerolog to grace.Logger.
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
