package repository

import (
	"context"
	"errors"

	"github.com/benfiola/devtools/internal/domain"
)

// ErrStop halts a ForEach iteration without error.  Version resolution stops
// walking as soon as it finds a tagged ancestor release, so callers routinely
// abandon the iteration early.
var ErrStop = errors.New("stop iterating")

// CommitIterator walks commit history from HEAD backward, one commit at a
// time.  Next returns io.EOF when no earlier commit exists.  Iterators are
// single-consumer; obtain a fresh one per walk.
type CommitIterator interface {
	Next(ctx context.Context) (*domain.Commit, error)
	ForEach(ctx context.Context, fn func(*domain.Commit) error) error
}

// GitRepository defines the read-side interface for version resolution.

type GitRepository interface {
	CurrentBranch(ctx context.Context) (string, error)
	Tags(ctx context.Context) ([]string, error)
	Commits(ctx context.Context) CommitIterator
}

// GitTagger defines the write-side git operations used by the publish
// workflow.

type GitTagger interface {
	TagExists(ctx context.Context, tag string) (bool, error)
	CreateTag(ctx context.Context, tag, msg string) error
	PushTag(ctx context.Context, tag string) error
}
