package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// gitTagger is the implementation of the GitTagger interface.
type gitTagger struct {
	repo *git.Repository
}

// NewGitTagger opens the repository in the current directory.
func NewGitTagger() (GitTagger, error) {
	repo, err := git.PlainOpen(".")
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &gitTagger{repo: repo}, nil
}

// TagExists checks if a tag exists locally.
func (t *gitTagger) TagExists(_ context.Context, tag string) (bool, error) {
	_, err := t.repo.Tag(tag)
	if err == git.ErrTagNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return true, nil
}

// CreateTag creates an annotated tag at HEAD.
func (t *gitTagger) CreateTag(_ context.Context, tag, msg string) error {
	head, err := t.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}
	cfg, err := t.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	name := cfg.User.Name
	if name == "" {
		name = "devtools"
	}
	email := cfg.User.Email
	if email == "" {
		email = "devtools@localhost"
	}
	_, err = t.repo.CreateTag(tag, head.Hash(), &git.CreateTagOptions{
		Message: msg,
		Tagger: &object.Signature{
			Name:  name,
			Email: email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}
	return nil
}

// PushTag pushes a tag to the remote.
func (t *gitTagger) PushTag(ctx context.Context, tag string) error {
	err := t.repo.PushContext(ctx, &git.PushOptions{
		RefSpecs: []config.RefSpec{config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag))},
		Auth:     t.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to push tag %s: %w", tag, err)
	}
	return nil
}

// getAuth returns authentication configuration for GitHub Actions
func (t *gitTagger) getAuth() *http.BasicAuth {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("DEVTOOLS_GITHUB_TOKEN")
	}
	if token == "" {
		return nil
	}
	// Use x-access-token as username for GitHub token authentication
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}
}
