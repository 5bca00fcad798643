package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/benfiola/devtools/internal/domain"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const containerPlatforms = "linux/arm64,linux/amd64"

// ToolProvider resolves a tool name to the argv that invokes it, installing
// the tool on demand.

type ToolProvider interface {
	Tool(ctx context.Context, name string) ([]string, error)
}

// publisher is the implementation of the Publisher interface.
type publisher struct {
	runner CommandRunner
	prefix ToolProvider
	fs     afero.Fs
	log    *zap.Logger
	// namespace is the registry namespace images are pushed under.
	namespace string
}

// NewPublisher creates a new Publisher.
func NewPublisher(
	runner CommandRunner,
	prefix ToolProvider,
	fs afero.Fs,
	log *zap.Logger,
	namespace string,
) Publisher {
	return &publisher{
		runner:    runner,
		prefix:    prefix,
		fs:        fs,
		log:       log,
		namespace: namespace,
	}
}

// PublishPackage uploads the project to its package registry.
func (p *publisher) PublishPackage(
	ctx context.Context,
	project *domain.Project,
	version domain.Version,
	token string,
) error {
	switch project.Kind {
	case domain.ProjectKindPython:
		return p.publishPython(ctx, project, version, token)
	case domain.ProjectKindNode:
		return p.publishNode(ctx, project, token)
	}
	return fmt.Errorf("unknown project kind: %q", project.Kind)
}

// publishPython builds a wheel and sdist and uploads them with twine.
func (p *publisher) publishPython(
	ctx context.Context,
	project *domain.Project,
	version domain.Version,
	token string,
) error {
	build, err := p.prefix.Tool(ctx, "build")
	if err != nil {
		return err
	}
	p.log.Info("building python package", zap.String("project", project.Name))
	if _, err := p.runner.Run(ctx, Command{Args: build, Dir: project.Dir}); err != nil {
		return fmt.Errorf("failed to build python package: %w", err)
	}

	// sdist/wheel filenames use the normalized package name
	pkg := strings.ReplaceAll(strings.ToLower(project.Name), "-", "_")
	var files []string
	for _, pattern := range []string{
		filepath.Join(project.Dir, "dist", pkg+"-*.whl"),
		filepath.Join(project.Dir, "dist", pkg+"-*.tar.gz"),
	} {
		matches, err := afero.Glob(p.fs, pattern)
		if err != nil {
			return fmt.Errorf("failed to glob %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no wheel/sdist files found for %s", project.Name)
	}

	twine, err := p.prefix.Tool(ctx, "twine")
	if err != nil {
		return err
	}
	args := append([]string(nil), twine...)
	args = append(args,
		"--no-color",
		"upload",
		"--disable-progress-bar",
		"--username=__token__",
		"--password="+token,
	)
	args = append(args, files...)
	p.log.Info("uploading python package",
		zap.String("project", project.Name), zap.String("version", version.String()))
	if _, err := p.runner.Run(ctx, Command{Args: args}); err != nil {
		return fmt.Errorf("failed to upload python package: %w", err)
	}
	return nil
}

// publishNode runs npm publish with registry authentication supplied via the
// environment.
func (p *publisher) publishNode(ctx context.Context, project *domain.Project, token string) error {
	p.log.Info("publishing npm package", zap.String("project", project.Name))
	_, err := p.runner.Run(ctx, Command{
		Args: []string{"npm", "publish"},
		Dir:  project.Dir,
		Env:  map[string]string{"NODE_AUTH_TOKEN": token},
	})
	if err != nil {
		return fmt.Errorf("failed to publish npm package: %w", err)
	}
	return nil
}

// PublishContainer builds and pushes a multi-platform container image.
func (p *publisher) PublishContainer(
	ctx context.Context,
	project *domain.Project,
	version domain.Version,
	user, token string,
) error {
	if _, err := p.runner.Run(ctx, Command{
		Args: []string{"docker", "login", "--username=" + user, "--password=" + token},
	}); err != nil {
		return fmt.Errorf("failed to log into registry: %w", err)
	}

	imageTag, err := version.Render(domain.FlavorContainerTag)
	if err != nil {
		return err
	}
	image := fmt.Sprintf("docker.io/%s/%s", p.namespace, project.Name)
	p.log.Info("building container image",
		zap.String("image", image), zap.String("tag", imageTag))
	args := []string{
		"docker", "buildx", "build",
		"--platform=" + containerPlatforms,
		"--progress=plain",
		"--push",
		"--tag=" + image + ":" + imageTag,
	}
	// prereleases never move the latest tag
	if !version.IsPrerelease() {
		args = append(args, "--tag="+image+":latest")
	}
	args = append(args, project.Dir)
	if _, err := p.runner.Run(ctx, Command{Args: args}); err != nil {
		return fmt.Errorf("failed to build container image: %w", err)
	}
	return nil
}
