package repository

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/benfiola/devtools/internal/domain"
	"github.com/benfiola/devtools/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner returns canned output per command line and records every
// invocation.
type scriptedRunner struct {
	outputs map[string]string
	errors  map[string]error
	calls   []string
}

func (r *scriptedRunner) Run(_ context.Context, cmd service.Command) (string, error) {
	key := strings.Join(cmd.Args, " ")
	r.calls = append(r.calls, key)
	if err, ok := r.errors[key]; ok {
		return "", err
	}
	out, ok := r.outputs[key]
	if !ok {
		return "", fmt.Errorf("unexpected command: %s", key)
	}
	return out, nil
}

func TestCliGitRepository_CurrentBranch(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return the checked-out branch", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]string{
			"git branch --show-current": "main",
		}}
		branch, err := NewGitRepository(runner, "").CurrentBranch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "main", branch)
	})
	t.Run("Should wrap runner errors", func(t *testing.T) {
		runner := &scriptedRunner{errors: map[string]error{
			"git branch --show-current": fmt.Errorf("not a git repository"),
		}}
		_, err := NewGitRepository(runner, "").CurrentBranch(ctx)
		assert.ErrorContains(t, err, "failed to read current branch")
	})
}

func TestCliGitRepository_Tags(t *testing.T) {
	ctx := context.Background()
	t.Run("Should split tags on newlines", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]string{
			"git tag": "v1.0.0\nv1.1.0-rc.1\nlatest",
		}}
		tags, err := NewGitRepository(runner, "").Tags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"v1.0.0", "v1.1.0-rc.1", "latest"}, tags)
	})
	t.Run("Should return nil for an untagged repo", func(t *testing.T) {
		runner := &scriptedRunner{outputs: map[string]string{"git tag": ""}}
		tags, err := NewGitRepository(runner, "").Tags(ctx)
		require.NoError(t, err)
		assert.Nil(t, tags)
	})
}

func TestCommitIter(t *testing.T) {
	ctx := context.Background()
	newRunner := func() *scriptedRunner {
		return &scriptedRunner{outputs: map[string]string{
			"git rev-list HEAD --format=%H --no-commit-header --max-count=1": "bbbb",
			"git tag --points-at bbbb":                                      "",
			"git rev-list bbbb --format=%B --no-commit-header --max-count=1": "feat: add publish command",
			"git rev-list bbbb --max-count=1 --skip=1":                       "aaaa",
			"git tag --points-at aaaa":                                       "v1.0.0\nlatest",
			"git rev-list aaaa --format=%B --no-commit-header --max-count=1": "chore: release",
			"git rev-list bbbb --max-count=1 --skip=2":                       "",
		}}
	}
	t.Run("Should walk history backward one commit at a time", func(t *testing.T) {
		iter := NewGitRepository(newRunner(), "").Commits(ctx)

		commit, err := iter.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "bbbb", commit.Hash)
		assert.Equal(t, "feat: add publish command", commit.Message)
		assert.Empty(t, commit.Tags)

		commit, err = iter.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "aaaa", commit.Hash)
		assert.Equal(t, []string{"v1.0.0", "latest"}, commit.Tags)

		_, err = iter.Next(ctx)
		assert.Equal(t, io.EOF, err)
	})
	t.Run("Should not query past a stopped iteration", func(t *testing.T) {
		runner := newRunner()
		iter := NewGitRepository(runner, "").Commits(ctx)
		err := iter.ForEach(ctx, func(commit *domain.Commit) error {
			if len(commit.Tags) > 0 {
				return ErrStop
			}
			return nil
		})
		require.NoError(t, err)
		for _, call := range runner.calls {
			assert.NotContains(t, call, "--skip=2")
		}
	})
	t.Run("Should propagate callback errors", func(t *testing.T) {
		iter := NewGitRepository(newRunner(), "").Commits(ctx)
		wantErr := fmt.Errorf("boom")
		err := iter.ForEach(ctx, func(*domain.Commit) error { return wantErr })
		assert.ErrorIs(t, err, wantErr)
	})
	t.Run("Should visit every commit with ForEach", func(t *testing.T) {
		iter := NewGitRepository(newRunner(), "").Commits(ctx)
		var hashes []string
		err := iter.ForEach(ctx, func(commit *domain.Commit) error {
			hashes = append(hashes, commit.Hash)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"bbbb", "aaaa"}, hashes)
	})
}
