package service

import (
	"context"

	"github.com/benfiola/devtools/internal/domain"
)

// Publisher pushes build artifacts to external registries.

type Publisher interface {
	// PublishPackage uploads the project to its package registry (PyPI
	// for python projects, npm for node projects).
	PublishPackage(ctx context.Context, project *domain.Project, version domain.Version, token string) error
	// PublishContainer builds and pushes a container image tagged with
	// the version's container-tag rendering.
	PublishContainer(ctx context.Context, project *domain.Project, version domain.Version, user, token string) error
}
