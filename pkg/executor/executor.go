package executor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", commandError(name, err, stderr.String())
	}

	return stdout.String(), nil
}

// ExecuteInDir runs an external command in a specific working directory
func (e *implExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", commandError(name, err, stderr.String())
	}

	return stdout.String(), nil
}

// Stream runs an external command and forwards stdout to onLine as lines
// become available. onLine is called from the calling goroutine.
func (e *implExecutor) Stream(ctx context.Context, onLine func(string), name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("command '%s' stdout pipe: %w", name, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("command '%s' start: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		onLine(scanner.Text())
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		return commandError(name, err, stderr.String())
	}
	if scanErr != nil {
		return fmt.Errorf("command '%s' read output: %w", name, scanErr)
	}

	return nil
}

// commandError includes stderr in the error message for debugging
func commandError(name string, err error, stderr string) error {
	stderrStr := strings.TrimSpace(stderr)
	if stderrStr != "" {
		return fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
	}
	return fmt.Errorf("command '%s' failed: %w", name, err)
}
