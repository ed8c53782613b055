package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jimyag/hrdb/internal/hrd"
	"github.com/jimyag/hrdb/pkg/apierror"
	"github.com/jimyag/hrdb/pkg/ginx"
)

// NameQuery binds the :name path parameter shared by the enum, bitset
// and domain lookups, plus the optional session selector.
type NameQuery struct {
	Name    string `uri:"name" binding:"required"`
	Session string `form:"session"`
}

func (a *API) registerQueryRoutes(router *gin.RouterGroup) {
	router.GET("/enums/:name", ginx.Adapt5(a.GetEnum))
	router.GET("/bitsets/:name", ginx.Adapt5(a.GetBitset))
	router.GET("/domains/:name", ginx.Adapt5(a.GetDomain))
}

// GetEnum resolves a top-level enum by name against the named (or most
// recent) session's prepared database.
func (a *API) GetEnum(ctx *gin.Context, req *NameQuery) (*hrd.Enum, error) {
	db, ok := a.dbFor(req.Session)
	if !ok {
		return nil, apierror.ErrNoSession
	}
	enum, ok := db.FindEnum(req.Name)
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return enum, nil
}

// GetBitset resolves a top-level bitset by name.
func (a *API) GetBitset(ctx *gin.Context, req *NameQuery) (*hrd.Bitset, error) {
	db, ok := a.dbFor(req.Session)
	if !ok {
		return nil, apierror.ErrNoSession
	}
	bitset, ok := db.FindBitset(req.Name)
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return bitset, nil
}

// GetDomain resolves a domain by name.
func (a *API) GetDomain(ctx *gin.Context, req *NameQuery) (*hrd.Domain, error) {
	db, ok := a.dbFor(req.Session)
	if !ok {
		return nil, apierror.ErrNoSession
	}
	domain, ok := db.FindDomain(req.Name)
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return domain, nil
}
