package service

import "time"

// Timeout constants for service operations
const (
	// DefaultCommandTimeout bounds a single external command invocation.
	// Container builds are the slowest commands we run.
	DefaultCommandTimeout = 15 * time.Minute
)
