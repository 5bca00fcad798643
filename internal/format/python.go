package format

import (
	"context"
	"fmt"

	"github.com/benfiola/devtools/internal/service"
	"github.com/benfiola/devtools/internal/toolchain"
)

// pythonFormatter formats python sources with isort followed by black.
type pythonFormatter struct {
	svc       *Service
	prefix    *toolchain.Prefix
	runner    service.CommandRunner
	fragments []string
}

func newPythonFormatter(
	svc *Service,
	prefix *toolchain.Prefix,
	runner service.CommandRunner,
	extensions map[string][]string,
) Formatter {
	return &pythonFormatter{
		svc:       svc,
		prefix:    prefix,
		runner:    runner,
		fragments: extensions["Python"],
	}
}

func (f *pythonFormatter) Name() string {
	return "python"
}

func (f *pythonFormatter) Fragments() []string {
	return f.fragments
}

func (f *pythonFormatter) Format(ctx context.Context, files []string, check bool) error {
	isortConfig, err := f.svc.configFile("isort.toml")
	if err != nil {
		return err
	}
	isort, err := f.prefix.Tool(ctx, "isort")
	if err != nil {
		return err
	}
	args := append([]string(nil), isort...)
	args = append(args, "--settings="+isortConfig)
	if check {
		args = append(args, "--check")
	}
	args = append(args, files...)
	if _, err := f.runner.Run(ctx, service.Command{Args: args}); err != nil {
		return fmt.Errorf("isort failed: %w", err)
	}

	blackConfig, err := f.svc.configFile("black.toml")
	if err != nil {
		return err
	}
	black, err := f.prefix.Tool(ctx, "black")
	if err != nil {
		return err
	}
	args = append([]string(nil), black...)
	args = append(args, "--config="+blackConfig)
	if check {
		args = append(args, "--check")
	}
	args = append(args, files...)
	if _, err := f.runner.Run(ctx, service.Command{Args: args}); err != nil {
		return fmt.Errorf("black failed: %w", err)
	}
	return nil
}
