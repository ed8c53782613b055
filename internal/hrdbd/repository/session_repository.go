package repository

import (
	"context"

	"github.com/jimyag/hrdb/internal/hrdbd/repository/model"
	"gorm.io/gorm"
)

// SessionRepository persists and retrieves LoadSession records.
type SessionRepository interface {
	Create(ctx context.Context, session *model.LoadSession) error
	GetByID(ctx context.Context, id string) (*model.LoadSession, error)
	List(ctx context.Context, limit int) ([]*model.LoadSession, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository builds a SessionRepository backed by db.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.LoadSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*model.LoadSession, error) {
	var session model.LoadSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) List(ctx context.Context, limit int) ([]*model.LoadSession, error) {
	var sessions []*model.LoadSession
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
