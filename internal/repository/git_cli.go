package repository

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/benfiola/devtools/internal/domain"
	"github.com/benfiola/devtools/internal/service"
)

// cliGitRepository reads repository state through the git command line tool.
// Every read is a blocking subprocess call; nothing is cached between calls,
// so each resolution re-derives from current on-disk state.
type cliGitRepository struct {
	runner service.CommandRunner
	dir    string
}

// NewGitRepository creates a GitRepository backed by the git CLI, operating
// on the repository in dir (empty means the current directory).
func NewGitRepository(runner service.CommandRunner, dir string) GitRepository {
	return &cliGitRepository{runner: runner, dir: dir}
}

func (r *cliGitRepository) git(ctx context.Context, args ...string) (string, error) {
	return r.runner.Run(ctx, service.Command{
		Args: append([]string{"git"}, args...),
		Dir:  r.dir,
	})
}

// CurrentBranch returns the name of the checked-out branch.
func (r *cliGitRepository) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := r.git(ctx, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to read current branch: %w", err)
	}
	return branch, nil
}

// Tags returns every tag name in the repository.
func (r *cliGitRepository) Tags(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "tag")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Commits returns a fresh iterator over history starting at HEAD.
func (r *cliGitRepository) Commits(_ context.Context) CommitIterator {
	return &commitIter{repo: r}
}

// commitIter walks history backward with successive skip-N rev-list queries
// instead of loading the whole history, since histories can be unbounded and
// callers usually stop after a few commits.  Advancing is deferred until the
// next call, so an abandoned walk issues no extra queries.
type commitIter struct {
	repo    *cliGitRepository
	started bool
	head    string
	skip    int
}

// Next returns the next commit, or io.EOF when history is exhausted.
func (it *commitIter) Next(ctx context.Context) (*domain.Commit, error) {
	var hash string
	if !it.started {
		head, err := it.repo.git(ctx, "rev-list", "HEAD", "--format=%H", "--no-commit-header", "--max-count=1")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		it.started = true
		it.head = head
		hash = head
	} else {
		it.skip++
		out, err := it.repo.git(ctx, "rev-list", it.head, "--max-count=1", fmt.Sprintf("--skip=%d", it.skip))
		if err != nil {
			return nil, fmt.Errorf("failed to advance history walk: %w", err)
		}
		fields := strings.Fields(out)
		if len(fields) == 0 {
			return nil, io.EOF
		}
		hash = fields[0]
	}
	if hash == "" {
		return nil, io.EOF
	}

	tagsOut, err := it.repo.git(ctx, "tag", "--points-at", hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags at %s: %w", hash, err)
	}
	message, err := it.repo.git(ctx, "rev-list", hash, "--format=%B", "--no-commit-header", "--max-count=1")
	if err != nil {
		return nil, fmt.Errorf("failed to read message of %s: %w", hash, err)
	}

	return &domain.Commit{
		Hash:    hash,
		Message: message,
		Tags:    strings.Fields(tagsOut),
	}, nil
}

// ForEach calls fn for each remaining commit.  Returning ErrStop from fn
// halts the walk without error.
func (it *commitIter) ForEach(ctx context.Context, fn func(*domain.Commit) error) error {
	for {
		commit, err := it.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(commit); err != nil {
			if err == ErrStop {
				return nil
			}
			return err
		}
	}
}
