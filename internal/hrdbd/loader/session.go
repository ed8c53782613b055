// Package loader orchestrates one load request: parse an HRD document
// tree, prepare it, optionally decode a BIOS image's "d" table, and
// summarize the result for persistence and for the HTTP API.
package loader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jimyag/hrdb/internal/bios/dp"
	"github.com/jimyag/hrdb/internal/biosimg"
	"github.com/jimyag/hrdb/internal/hrd"
	"github.com/jimyag/hrdb/internal/hrdbd/repository"
	"github.com/jimyag/hrdb/internal/hrdbd/repository/model"
	"github.com/jimyag/hrdb/pkg/idgen"
)

// Request describes one load: a root HRD document, and an optional BIOS
// image to decode alongside it.
type Request struct {
	HRDRoot   string
	BIOSImage string
}

// Result is what a load produces: the prepared database (kept in memory
// for subsequent queries), the BIOS parse result if a BIOS image was
// given, and the summary that gets persisted.
type Result struct {
	SessionID string
	DB        *hrd.DB
	BIOS      *dp.Result
	Summary   *model.LoadSession
}

// Session owns the generator and repository a running hrdbd server uses
// to service load requests. It holds no HRD state of its own between
// loads — each Load call returns a fresh *hrd.DB for the caller (the API
// layer) to retain for subsequent queries.
type Session struct {
	repo   *repository.Repository
	sess   repository.SessionRepository
	gen    *idgen.Generator
	logger *zerolog.Logger
}

// New builds a Session backed by repo, logging through logger (nil falls
// back to a no-op logger, matching internal/hrd.NewDB's convention).
func New(repo *repository.Repository, logger *zerolog.Logger) *Session {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Session{
		repo:   repo,
		sess:   repository.NewSessionRepository(repo.DB()),
		gen:    idgen.New(),
		logger: logger,
	}
}

// Load runs the full A-F pipeline for req and persists a summary record.
func (s *Session) Load(ctx context.Context, req Request) (*Result, error) {
	sessionID, err := s.gen.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("allocate session id: %w", err)
	}

	// hrd.ParseFile only latches estatus for an unreadable file; a
	// missing root document fails the whole load instead.
	if _, err := os.Stat(req.HRDRoot); err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.HRDRoot, err)
	}

	db := hrd.NewDB(s.logger)
	if err := db.ParseFile(req.HRDRoot); err != nil {
		return nil, fmt.Errorf("parse %s: %w", req.HRDRoot, err)
	}
	hrd.PrepareDB(db)

	summary := &model.LoadSession{
		ID:          sessionID,
		HRDRoot:     req.HRDRoot,
		BIOSImage:   req.BIOSImage,
		Estatus:     db.Estatus(),
		EnumCount:   len(db.Enums),
		BitsetCount: len(db.Bitsets),
		DomainCount: len(db.Domains),
	}

	var biosResult *dp.Result
	if req.BIOSImage != "" {
		imageID, err := s.gen.GenerateImageID()
		if err != nil {
			return nil, fmt.Errorf("allocate image id: %w", err)
		}
		summary.BIOSImageID = imageID

		biosResult, err = s.loadBIOS(req.BIOSImage)
		if err != nil {
			return nil, fmt.Errorf("parse BIOS image %s: %w", req.BIOSImage, err)
		}
		summary.BIOSValid = biosResult.Root.DPInfo != nil && biosResult.Root.DPInfo.Valid
		summary.BIOSWarnings = strings.Join(biosResult.Warnings(), "; ")
	}

	if err := s.sess.Create(ctx, summary); err != nil {
		return nil, fmt.Errorf("persist session record: %w", err)
	}

	return &Result{
		SessionID: sessionID,
		DB:        db,
		BIOS:      biosResult,
		Summary:   summary,
	}, nil
}

// loadBIOS reads imagePath into memory and walks its "d" index. The BIT
// framing table that would locate the "d" entry within a real BIOS image
// is external to this toolkit (module A's documented collaborator
// boundary); hrdbd stands in a single-slot index located at the start
// of the image, whose first two bytes give the DP INFO offset, since the
// server's job is to exercise the parser against
// a supplied sub-table, not to walk a full BIOS image table directory.
func (s *Session) loadBIOS(imagePath string) (*dp.Result, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}

	img := biosimg.NewSliceReader(data)
	bit := dp.BitEntry{Offset: 0, TOffset: 0, TLen: 2}
	return dp.Parse(img, s.logger, bit)
}

// GetSession returns the persisted summary for a past session ID.
func (s *Session) GetSession(ctx context.Context, id string) (*model.LoadSession, error) {
	return s.sess.GetByID(ctx, id)
}

// ListSessions returns the most recent sessions, newest first.
func (s *Session) ListSessions(ctx context.Context, limit int) ([]*model.LoadSession, error) {
	return s.sess.List(ctx, limit)
}
