package service

import "context"

// Command describes a single external process invocation.
type Command struct {
	// Args is the full argv, program first.
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra environment variables appended to the inherited
	// environment.
	Env map[string]string
}

// CommandRunner runs external processes and captures their output.

type CommandRunner interface {
	// Run executes the command, blocking until it exits, and returns its
	// trimmed stdout.  A non-zero exit yields a *CommandError.
	Run(ctx context.Context, cmd Command) (string, error)
}
