package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/benfiola/devtools/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeToolProvider struct{}

func (fakeToolProvider) Tool(_ context.Context, name string) ([]string, error) {
	switch name {
	case "build":
		return []string{"/prefix/python/bin/python", "-m", "build"}, nil
	case "twine":
		return []string{"/prefix/python/bin/twine"}, nil
	}
	return nil, fmt.Errorf("unknown tool: %q", name)
}

type recordingRunner struct {
	calls []Command
}

func (r *recordingRunner) Run(_ context.Context, cmd Command) (string, error) {
	r.calls = append(r.calls, cmd)
	return "", nil
}

func (r *recordingRunner) call(i int) string {
	return strings.Join(r.calls[i].Args, " ")
}

func TestPublisher_PublishPackage(t *testing.T) {
	ctx := context.Background()
	t.Run("Should build and upload a python package", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "dist/my_tool-1.1.0-py3-none-any.whl", []byte("x"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "dist/my_tool-1.1.0.tar.gz", []byte("x"), 0o644))
		runner := &recordingRunner{}
		pub := NewPublisher(runner, fakeToolProvider{}, fs, zap.NewNop(), "benfiola")

		project := &domain.Project{Name: "my-tool", Kind: domain.ProjectKindPython, Dir: "."}
		err := pub.PublishPackage(ctx, project, domain.MustParseVersion("1.1.0"), "secret")
		require.NoError(t, err)

		require.Len(t, runner.calls, 2)
		assert.Equal(t, "/prefix/python/bin/python -m build", runner.call(0))
		upload := runner.call(1)
		assert.Contains(t, upload, "/prefix/python/bin/twine")
		assert.Contains(t, upload, "--username=__token__")
		assert.Contains(t, upload, "--password=secret")
		assert.Contains(t, upload, "dist/my_tool-1.1.0-py3-none-any.whl")
		assert.Contains(t, upload, "dist/my_tool-1.1.0.tar.gz")
	})
	t.Run("Should fail when the build produced no artifacts", func(t *testing.T) {
		runner := &recordingRunner{}
		pub := NewPublisher(runner, fakeToolProvider{}, afero.NewMemMapFs(), zap.NewNop(), "benfiola")

		project := &domain.Project{Name: "my-tool", Kind: domain.ProjectKindPython, Dir: "."}
		err := pub.PublishPackage(ctx, project, domain.MustParseVersion("1.1.0"), "secret")
		assert.ErrorContains(t, err, "no wheel/sdist files")
	})
	t.Run("Should publish node packages with npm", func(t *testing.T) {
		runner := &recordingRunner{}
		pub := NewPublisher(runner, fakeToolProvider{}, afero.NewMemMapFs(), zap.NewNop(), "benfiola")

		project := &domain.Project{Name: "my-tool", Kind: domain.ProjectKindNode, Dir: "pkg"}
		err := pub.PublishPackage(ctx, project, domain.MustParseVersion("1.1.0"), "secret")
		require.NoError(t, err)

		require.Len(t, runner.calls, 1)
		assert.Equal(t, "npm publish", runner.call(0))
		assert.Equal(t, "pkg", runner.calls[0].Dir)
		assert.Equal(t, "secret", runner.calls[0].Env["NODE_AUTH_TOKEN"])
	})
	t.Run("Should return error for unknown project kind", func(t *testing.T) {
		pub := NewPublisher(&recordingRunner{}, fakeToolProvider{}, afero.NewMemMapFs(), zap.NewNop(), "benfiola")
		err := pub.PublishPackage(ctx, &domain.Project{Kind: "rust"}, domain.MustParseVersion("1.0.0"), "t")
		assert.Error(t, err)
	})
}

func TestPublisher_PublishContainer(t *testing.T) {
	ctx := context.Background()
	t.Run("Should log in and push a multi-platform image", func(t *testing.T) {
		runner := &recordingRunner{}
		pub := NewPublisher(runner, fakeToolProvider{}, afero.NewMemMapFs(), zap.NewNop(), "benfiola")

		project := &domain.Project{Name: "my-tool", Kind: domain.ProjectKindPython, Dir: "."}
		err := pub.PublishContainer(ctx, project, domain.MustParseVersion("1.1.0"), "user", "secret")
		require.NoError(t, err)

		require.Len(t, runner.calls, 2)
		assert.Equal(t, "docker login --username=user --password=secret", runner.call(0))
		build := runner.call(1)
		assert.Contains(t, build, "docker buildx build")
		assert.Contains(t, build, "--platform=linux/arm64,linux/amd64")
		assert.Contains(t, build, "--tag=docker.io/benfiola/my-tool:1.1.0")
		assert.Contains(t, build, "--tag=docker.io/benfiola/my-tool:latest")
	})
	t.Run("Should not move the latest tag for prereleases", func(t *testing.T) {
		runner := &recordingRunner{}
		pub := NewPublisher(runner, fakeToolProvider{}, afero.NewMemMapFs(), zap.NewNop(), "benfiola")

		project := &domain.Project{Name: "my-tool", Kind: domain.ProjectKindPython, Dir: "."}
		err := pub.PublishContainer(ctx, project, domain.MustParseVersion("1.1.0-rc.1"), "user", "secret")
		require.NoError(t, err)

		build := runner.call(1)
		assert.Contains(t, build, "--tag=docker.io/benfiola/my-tool:1.1.0-rc.1")
		assert.NotContains(t, build, ":latest")
	})
}
