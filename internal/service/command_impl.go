package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CommandError reports a command that exited non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// commandRunner is the implementation of the CommandRunner interface.
type commandRunner struct {
	log     *zap.Logger
	timeout time.Duration
}

// NewCommandRunner creates a new CommandRunner.
func NewCommandRunner(log *zap.Logger) CommandRunner {
	return &commandRunner{
		log:     log,
		timeout: DefaultCommandTimeout,
	}
}

// Run executes the command and returns its trimmed stdout.
func (r *commandRunner) Run(ctx context.Context, cmd Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", fmt.Errorf("command has no arguments")
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	fields := []zap.Field{zap.Strings("args", cmd.Args)}
	if cmd.Dir != "" {
		fields = append(fields, zap.String("cwd", cmd.Dir))
	}
	if len(cmd.Env) > 0 {
		fields = append(fields, zap.Strings("env", envKeys(cmd.Env)))
	}
	r.log.Debug("run command", fields...)

	proc := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	proc.Dir = cmd.Dir
	proc.Env = commandEnv(cmd.Env)

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("command timed out after %v", r.timeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", &CommandError{
				Args:     cmd.Args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("failed to run command: %w", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// commandEnv merges extra variables into the inherited environment.
func commandEnv(extra map[string]string) []string {
	env := os.Environ()
	for _, key := range envKeys(extra) {
		env = append(env, key+"="+extra[key])
	}
	return env
}

// envKeys returns the sorted keys of an environment map.
func envKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
