package repository

import "context"

// GithubRepository defines the interface for GitHub API operations.

type GithubRepository interface {
	CreateRelease(ctx context.Context, tag, name, body string, prerelease bool) (string, error)
}
