package toolchain

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/benfiola/devtools/internal/service"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// pythonLanguage installs tools into a virtual environment.
type pythonLanguage struct {
	path   string
	fs     afero.Fs
	runner service.CommandRunner
	log    *zap.Logger
}

func newPythonLanguage(path string, fs afero.Fs, runner service.CommandRunner, log *zap.Logger) Language {
	return &pythonLanguage{path: path, fs: fs, runner: runner, log: log}
}

func (l *pythonLanguage) Name() string {
	return "python"
}

func (l *pythonLanguage) binPath(name string) string {
	return filepath.Join(l.path, "bin", name)
}

// Install creates the virtual environment if it does not exist yet.
func (l *pythonLanguage) Install(ctx context.Context) error {
	exists, err := afero.Exists(l.fs, l.binPath("python"))
	if err != nil {
		return fmt.Errorf("failed to check virtual environment: %w", err)
	}
	if exists {
		return nil
	}
	l.log.Info("creating python virtual environment", zap.String("path", l.path))
	if _, err := l.runner.Run(ctx, service.Command{Args: []string{"python", "-m", "venv", l.path}}); err != nil {
		return fmt.Errorf("failed to create virtual environment: %w", err)
	}
	return nil
}

// InstallTool pip-installs the tool's packages into the virtual environment
// if missing.  Tools without a binary run as "python -m <package>".
func (l *pythonLanguage) InstallTool(ctx context.Context, tool Tool) ([]string, error) {
	installed, err := afero.Glob(l.fs, filepath.Join(l.path, "lib", "*", "site-packages", tool.Packages[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to check installed packages: %w", err)
	}
	if len(installed) == 0 {
		l.log.Info("installing pip packages", zap.Strings("packages", tool.Packages))
		args := append([]string{l.binPath("python"), "-m", "pip", "install"}, tool.Packages...)
		if _, err := l.runner.Run(ctx, service.Command{Args: args}); err != nil {
			return nil, fmt.Errorf("failed to install pip packages: %w", err)
		}
	}
	if tool.Binary != "" {
		return []string{l.binPath(tool.Binary)}, nil
	}
	return []string{l.binPath("python"), "-m", tool.Packages[0]}, nil
}
