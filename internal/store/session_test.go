package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	t.Run("assigns id and start time", func(t *testing.T) {
		sess := &Session{Source: SourceCamera, Label: "desk"}
		require.NoError(t, repo.Create(sess))

		_, err := uuid.Parse(sess.ID)
		assert.NoError(t, err, "generated id should be a UUID")
		assert.False(t, sess.StartedAt.IsZero())
	})

	t.Run("keeps caller id", func(t *testing.T) {
		sess := &Session{ID: "fixed", Source: SourceImage}
		require.NoError(t, repo.Create(sess))
		assert.Equal(t, "fixed", sess.ID)
	})

	t.Run("duplicate id fails", func(t *testing.T) {
		assert.Error(t, repo.Create(&Session{ID: "fixed", Source: SourceImage}))
	})

	t.Run("unknown source rejected", func(t *testing.T) {
		assert.Error(t, repo.Create(&Session{Source: Source("video")}))
	})
}

func TestSessionRepository_GetByID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(&Session{ID: "s1", Source: SourceImage, Label: "peace.jpg", StartedAt: started}))

	got, err := repo.GetByID("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, SourceImage, got.Source)
	assert.Equal(t, "peace.jpg", got.Label)
	assert.True(t, got.StartedAt.Equal(started), "StartedAt = %v, want %v", got.StartedAt, started)
	assert.Nil(t, got.EndedAt)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Create(&Session{
			ID:        id,
			Source:    SourceCamera,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := repo.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSessionRepository_End(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	require.NoError(t, repo.Create(&Session{ID: "s1", Source: SourceCamera}))

	ended := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	require.NoError(t, repo.End("s1", ended))

	got, err := repo.GetByID("s1")
	require.NoError(t, err)
	require.NotNil(t, got.EndedAt)
	assert.True(t, got.EndedAt.Equal(ended))

	assert.ErrorIs(t, repo.End("missing", ended), ErrNotFound)
}

func TestSessionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	require.NoError(t, repo.Create(&Session{ID: "s1", Source: SourceCamera}))
	require.NoError(t, s.Counts().Record("s1", 0, []HandRecord{
		{Slot: 0, States: "11111", Raw: 5, Smoothed: 5},
	}))

	require.NoError(t, repo.Delete("s1"))

	_, err := repo.GetByID("s1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Frame counts cascade with their session.
	counts, err := s.Counts().GetBySession("s1")
	require.NoError(t, err)
	assert.Empty(t, counts)

	totals, err := s.Counts().Totals("s1")
	require.NoError(t, err)
	assert.Empty(t, totals)

	assert.ErrorIs(t, repo.Delete("s1"), ErrNotFound)
}
