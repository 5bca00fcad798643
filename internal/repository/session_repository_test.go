package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/benfiola/devtools/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSessionRepository(t *testing.T) {
	ctx := context.Background()
	newRepo := func(t *testing.T) SessionRepository {
		// Advisory locks need real files, so these tests run on the OS
		// filesystem in a temp directory.
		return NewJSONSessionRepository(afero.NewOsFs(), filepath.Join(t.TempDir(), "sessions"))
	}
	newSession := func(id string) *domain.PublishSession {
		session := domain.NewPublishSession(id, domain.PublishFlavorPackage)
		session.Project = "my-tool"
		session.Version = "1.2.3"
		session.Tag = "v1.2.3"
		return session
	}
	t.Run("Should save and load a session", func(t *testing.T) {
		repo := newRepo(t)
		session := newSession("abc-123")
		session.MarkStepCompleted(domain.StepTypeResolveVersion, session.StartedAt)
		require.NoError(t, repo.Save(ctx, session))

		loaded, err := repo.Load(ctx, "abc-123")
		require.NoError(t, err)
		assert.Equal(t, "my-tool", loaded.Project)
		assert.Equal(t, "1.2.3", loaded.Version)
		require.Len(t, loaded.Steps, 1)
		assert.Equal(t, domain.StepStatusCompleted, loaded.Steps[0].Status)
	})
	t.Run("Should load the most recent session", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newSession("first")))
		require.NoError(t, repo.Save(ctx, newSession("second")))

		loaded, err := repo.LoadLatest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second", loaded.SessionID)
	})
	t.Run("Should return error for a missing session", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, newSession("exists")))
		_, err := repo.Load(ctx, "missing")
		assert.Error(t, err)
	})
	t.Run("Should return error when no sessions are recorded", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.LoadLatest(ctx)
		assert.ErrorContains(t, err, "no publish sessions recorded")
	})
	t.Run("Should record failed steps", func(t *testing.T) {
		repo := newRepo(t)
		session := newSession("failed-run")
		session.MarkStepFailed(domain.StepTypePublish, session.StartedAt, assert.AnError)
		require.NoError(t, repo.Save(ctx, session))

		loaded, err := repo.Load(ctx, "failed-run")
		require.NoError(t, err)
		assert.Equal(t, domain.SessionStatusFailed, loaded.Status)
		require.Len(t, loaded.Steps, 1)
		assert.Equal(t, domain.StepStatusFailed, loaded.Steps[0].Status)
		assert.NotEmpty(t, loaded.Steps[0].Error)
	})
}
