package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/hrdb/internal/hrdbd/repository/model"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = repo.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return repo
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	repo := setupTestDB(t)
	sessRepo := NewSessionRepository(repo.DB())
	ctx := context.Background()

	t.Run("Create and GetByID", func(t *testing.T) {
		session := &model.LoadSession{
			ID:          "sess-1",
			HRDRoot:     "/hrd/root.hrd",
			Estatus:     false,
			EnumCount:   3,
			BitsetCount: 1,
			DomainCount: 2,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		require.NoError(t, sessRepo.Create(ctx, session))

		got, err := sessRepo.GetByID(ctx, "sess-1")
		assert.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, session.HRDRoot, got.HRDRoot)
		assert.Equal(t, session.EnumCount, got.EnumCount)
	})

	t.Run("GetByID missing", func(t *testing.T) {
		_, err := sessRepo.GetByID(ctx, "sess-does-not-exist")
		assert.Error(t, err)
	})

	t.Run("List orders newest first and respects limit", func(t *testing.T) {
		base := time.Now()
		for i := 0; i < 3; i++ {
			session := &model.LoadSession{
				ID:        "sess-list-" + string(rune('a'+i)),
				HRDRoot:   "/hrd/list.hrd",
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
				UpdatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, sessRepo.Create(ctx, session))
		}

		all, err := sessRepo.List(ctx, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 3)

		limited, err := sessRepo.List(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
		// newest first
		assert.True(t, limited[0].CreatedAt.After(limited[1].CreatedAt) || limited[0].CreatedAt.Equal(limited[1].CreatedAt))
	})
}
