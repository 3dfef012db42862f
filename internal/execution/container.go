package execution

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ptx/internal/config"
)

// lookPath is a variable to allow mocking in tests
var lookPath = exec.LookPath

const removeTimeout = 10 * time.Second

// ContainerRuntime drives a Docker compatible CLI
type ContainerRuntime struct {
	binary  string
	workdir string
	logger  zerolog.Logger
}

// NewContainerRuntime creates a runtime for the given CLI binary
func NewContainerRuntime(binary string, logger zerolog.Logger) *ContainerRuntime {
	if binary == "" {
		binary = config.DefaultContainerRuntime
	}
	return &ContainerRuntime{
		binary:  binary,
		workdir: config.DefaultContainerWorkdir,
		logger:  logger,
	}
}

// Available checks that the CLI is installed and its daemon answers
func (c *ContainerRuntime) Available(ctx context.Context) error {
	if _, err := lookPath(c.binary); err != nil {
		return fmt.Errorf("%s command not found in PATH: %w", c.binary, err)
	}

	cmd := execCommandContext(ctx, c.binary, "info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s daemon not accessible: %w", c.binary, err)
	}
	return nil
}

// Invocation wraps command in a throwaway container with the root mounted
// as the working directory. mountPath is the root in the runtime's syntax.
func (c *ContainerRuntime) Invocation(name, image, rootPath, mountPath string, env map[string]string, command []string) Invocation {
	args := []string{
		"run", "--rm",
		"--name", name,
		"-v", fmt.Sprintf("%s:%s", mountPath, c.workdir),
		"-w", c.workdir,
	}
	for _, kv := range pairs(env) {
		args = append(args, "-e", kv)
	}
	args = append(args, image)
	args = append(args, command...)

	return Invocation{
		Name:      c.binary,
		Args:      args,
		Dir:       rootPath,
		Container: name,
	}
}

// Remove force-removes a container. Killing the client does not stop it.
func (c *ContainerRuntime) Remove(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), removeTimeout)
	defer cancel()

	cmd := execCommandContext(ctx, c.binary, "rm", "-f", name)
	if output, err := cmd.CombinedOutput(); err != nil {
		c.logger.Warn().
			Err(err).
			Str("container", name).
			Str("output", strings.TrimSpace(string(output))).
			Msg("failed to remove container")
		return
	}
	c.logger.Debug().Str("container", name).Msg("container removed")
}
