// Package toolchain manages a prefix directory holding per-language tool
// installs (a python virtual environment, a private npm package directory).
package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benfiola/devtools/internal/service"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	prefixDirPermissions = 0o755
	lockRetryDelay       = 100 * time.Millisecond
)

// Language prepares a directory inside the prefix and installs tools into it.

type Language interface {
	Name() string
	// Install prepares the language directory so tools can be installed
	// into it (e.g. create a python virtual environment).
	Install(ctx context.Context) error
	// InstallTool installs the tool if missing and returns the argv used
	// to invoke it.
	InstallTool(ctx context.Context, tool Tool) ([]string, error)
}

// Prefix is a directory holding languages and their installed tools.
type Prefix struct {
	path      string
	fs        afero.Fs
	log       *zap.Logger
	languages map[string]Language
	tools     map[string]Tool
}

// NewPrefix creates a prefix rooted at path and populates the language and
// tool registries.
func NewPrefix(path string, fs afero.Fs, runner service.CommandRunner, log *zap.Logger) (*Prefix, error) {
	p := &Prefix{
		path:      path,
		fs:        fs,
		log:       log,
		languages: map[string]Language{},
		tools:     map[string]Tool{},
	}
	for _, lang := range []Language{
		newPythonLanguage(filepath.Join(path, "python"), fs, runner, log),
		newNodeLanguage(filepath.Join(path, "node"), fs, runner, log),
	} {
		p.languages[lang.Name()] = lang
	}
	for _, tool := range builtinTools() {
		if _, ok := p.languages[tool.Language]; !ok {
			return nil, fmt.Errorf("tool %q references unknown language %q", tool.Name, tool.Language)
		}
		if len(tool.Packages) == 0 {
			return nil, fmt.Errorf("tool %q has no packages", tool.Name)
		}
		p.tools[tool.Name] = tool
	}
	return p, nil
}

// Path returns the prefix root directory.
func (p *Prefix) Path() string {
	return p.path
}

// Tool ensures the named tool is installed and returns the argv to invoke
// it.
func (p *Prefix) Tool(ctx context.Context, name string) ([]string, error) {
	tool, ok := p.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %q", name)
	}
	unlock, err := p.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	lang := p.languages[tool.Language]
	if err := lang.Install(ctx); err != nil {
		return nil, fmt.Errorf("failed to install language %s: %w", lang.Name(), err)
	}
	argv, err := lang.InstallTool(ctx, tool)
	if err != nil {
		return nil, fmt.Errorf("failed to install tool %s: %w", tool.Name, err)
	}
	return argv, nil
}

// Bootstrap installs every language and tool up front.
func (p *Prefix) Bootstrap(ctx context.Context) error {
	unlock, err := p.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	for _, tool := range builtinTools() {
		lang := p.languages[tool.Language]
		if err := lang.Install(ctx); err != nil {
			return fmt.Errorf("failed to install language %s: %w", lang.Name(), err)
		}
		p.log.Info("installing tool", zap.String("tool", tool.Name), zap.String("language", lang.Name()))
		if _, err := lang.InstallTool(ctx, tool); err != nil {
			return fmt.Errorf("failed to install tool %s: %w", tool.Name, err)
		}
	}
	return nil
}

// lock guards installs against concurrent devtools invocations sharing the
// prefix.  The lock file lives on the host filesystem regardless of the
// afero backend.
func (p *Prefix) lock(ctx context.Context) (func(), error) {
	if err := p.fs.MkdirAll(p.path, prefixDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create prefix directory: %w", err)
	}
	if err := os.MkdirAll(p.path, prefixDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create prefix directory: %w", err)
	}
	lock := flock.New(filepath.Join(p.path, ".devtools.lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock prefix: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not lock prefix %s", p.path)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			p.log.Warn("failed to unlock prefix", zap.Error(err))
		}
	}, nil
}
