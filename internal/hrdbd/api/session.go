package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimyag/hrdb/internal/hrdbd/loader"
	"github.com/jimyag/hrdb/internal/hrdbd/repository/model"
	"github.com/jimyag/hrdb/pkg/apierror"
	"github.com/jimyag/hrdb/pkg/ginx"
)

// LoadRequest is the body of POST /api/load.
type LoadRequest struct {
	HRDRoot   string `json:"hrd_root" binding:"required"`
	BIOSImage string `json:"bios_image,omitempty"`
}

// LoadResponse reports the outcome of a load, matching the persisted
// model.LoadSession plus whatever BIOS warnings came out of that run.
type LoadResponse struct {
	*model.LoadSession
}

// SessionsQuery binds the optional limit query parameter of GET /api/sessions.
type SessionsQuery struct {
	Limit int `form:"limit"`
}

// SessionPath binds the :id path parameter of GET /api/sessions/:id.
type SessionPath struct {
	ID string `uri:"id" binding:"required"`
}

func (a *API) registerSessionRoutes(router *gin.RouterGroup) {
	router.POST("/load", ginx.Adapt5(a.Load))
	router.GET("/sessions", ginx.Adapt5(a.ListSessions))
	router.GET("/sessions/:id", ginx.Adapt5(a.GetSession))
}

// Load parses and prepares req.HRDRoot (and, if given, req.BIOSImage's
// "d" table), keeps the resulting database in memory for later queries,
// and persists a summary record.
func (a *API) Load(ctx *gin.Context, req *LoadRequest) (*LoadResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("hrd_root", req.HRDRoot).Str("bios_image", req.BIOSImage).Msg("load requested")

	result, err := a.loaderSession.Load(ctx, loader.Request{
		HRDRoot:   req.HRDRoot,
		BIOSImage: req.BIOSImage,
	})
	if err != nil {
		logger.Error().Err(err).Msg("load failed")
		if req.BIOSImage != "" && strings.Contains(err.Error(), "BIOS image") {
			return nil, apierror.WrapError(apierror.ErrBIOSParseFailure, err.Error(), err)
		}
		return nil, apierror.WrapError(apierror.ErrParseFailure, err.Error(), err)
	}

	a.rememberDB(result.SessionID, result.DB)

	logger.Info().Str("session_id", result.SessionID).Bool("estatus", result.Summary.Estatus).Msg("load complete")
	return &LoadResponse{LoadSession: result.Summary}, nil
}

// ListSessions returns the most recent load sessions, newest first.
func (a *API) ListSessions(ctx *gin.Context, req *SessionsQuery) ([]*model.LoadSession, error) {
	return a.loaderSession.ListSessions(ctx, req.Limit)
}

// GetSession returns one past session's summary.
func (a *API) GetSession(ctx *gin.Context, req *SessionPath) (*model.LoadSession, error) {
	return a.loaderSession.GetSession(ctx, req.ID)
}
