package accel

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// CommandRunner abstracts process spawning so probing and transcoding can be
// exercised in tests without a real ffmpeg binary.
type CommandRunner interface {
	// Run executes a command and waits for it, returning an error on
	// non-zero exit, spawn failure, or context expiry.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes a command and returns its combined stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if stderr.Len() > 0 {
			return fmt.Errorf("%s: %w - %s", name, err, firstLine(stderr.String()))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Output implements CommandRunner.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s: %w - %s", name, err, firstLine(stderr.String()))
	}
	return stdout.String(), nil
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			return s[:i]
		}
	}
	return s
}
