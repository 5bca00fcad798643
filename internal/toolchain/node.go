package toolchain

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/benfiola/devtools/internal/service"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// nodeLanguage installs tools as npm packages under a private package
// directory.
type nodeLanguage struct {
	path   string
	fs     afero.Fs
	runner service.CommandRunner
	log    *zap.Logger
}

func newNodeLanguage(path string, fs afero.Fs, runner service.CommandRunner, log *zap.Logger) Language {
	return &nodeLanguage{path: path, fs: fs, runner: runner, log: log}
}

func (l *nodeLanguage) Name() string {
	return "node"
}

func (l *nodeLanguage) binPath(name string) string {
	return filepath.Join(l.path, "node_modules", ".bin", name)
}

// Install creates a private package at the language path so npm installs
// land in its node_modules directory.
func (l *nodeLanguage) Install(_ context.Context) error {
	if err := l.fs.MkdirAll(l.path, prefixDirPermissions); err != nil {
		return fmt.Errorf("failed to create npm package directory: %w", err)
	}
	packageJSON := filepath.Join(l.path, "package.json")
	exists, err := afero.Exists(l.fs, packageJSON)
	if err != nil {
		return fmt.Errorf("failed to check package.json: %w", err)
	}
	if exists {
		return nil
	}
	l.log.Info("creating package.json", zap.String("path", packageJSON))
	if err := afero.WriteFile(l.fs, packageJSON, []byte("{\n  \"private\": true\n}\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write package.json: %w", err)
	}
	return nil
}

// InstallTool npm-installs the tool's packages if its binary is missing.
func (l *nodeLanguage) InstallTool(ctx context.Context, tool Tool) ([]string, error) {
	if tool.Binary == "" {
		return nil, fmt.Errorf("node tool %q has no binary", tool.Name)
	}
	binary := l.binPath(tool.Binary)
	exists, err := afero.Exists(l.fs, binary)
	if err != nil {
		return nil, fmt.Errorf("failed to check binary: %w", err)
	}
	if !exists {
		l.log.Info("installing npm packages", zap.Strings("packages", tool.Packages))
		args := append([]string{"npm", "install"}, tool.Packages...)
		if _, err := l.runner.Run(ctx, service.Command{Args: args, Dir: l.path}); err != nil {
			return nil, fmt.Errorf("failed to install npm packages: %w", err)
		}
	}
	exists, err = afero.Exists(l.fs, binary)
	if err != nil {
		return nil, fmt.Errorf("failed to check binary: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("tool install did not produce binary: %s", binary)
	}
	return []string{binary}, nil
}
