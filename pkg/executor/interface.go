package executor

import "context"

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// Stream runs a command and delivers stdout line by line to onLine
	// while the command is still running. Stderr is collected and included
	// in the returned error on failure.
	Stream(ctx context.Context, onLine func(string), name string, args ...string) error
}
