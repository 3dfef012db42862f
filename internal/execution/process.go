package execution

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// waitDelay bounds how long output copying may continue after a kill
const waitDelay = 2 * time.Second

// Invocation is one subprocess to spawn
type Invocation struct {
	Name string
	Args []string
	Dir  string
	Env  []string

	// Container is the container name when the invocation goes through the
	// container runtime
	Container string
}

// String returns the argument vector joined by spaces
func (i Invocation) String() string {
	return strings.Join(append([]string{i.Name}, i.Args...), " ")
}

// Outcome is how a subprocess ended
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// chunkWriter keeps a copy of a stream and forwards every write as it arrives
type chunkWriter struct {
	buf  strings.Builder
	emit func(string)
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if w.emit != nil {
		w.emit(string(p))
	}
	return len(p), nil
}

// spawn runs the invocation until it exits or ctx is done. emit receives
// stdout and stderr chunks in arrival order. A non-zero exit is not an
// error; errors are reserved for processes that could not be run.
func spawn(ctx context.Context, inv Invocation, emit func(string)) (Outcome, error) {
	cmd := execCommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = append(cmd.Env, inv.Env...)
	cmd.WaitDelay = waitDelay

	stdout := &chunkWriter{emit: emit}
	stderr := &chunkWriter{emit: emit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	outcome := Outcome{
		Stdout: stdout.buf.String(),
		Stderr: stderr.buf.String(),
	}
	if err == nil {
		return outcome, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		return outcome, nil
	}
	outcome.ExitCode = -1
	return outcome, fmt.Errorf("failed to run %s: %w", inv.Name, err)
}

// excerpt returns the last maxExcerpt bytes of s, trimmed
func excerpt(s string) string {
	const maxExcerpt = 2000
	s = strings.TrimSpace(s)
	if len(s) > maxExcerpt {
		s = "..." + s[len(s)-maxExcerpt:]
	}
	return s
}
