package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ptx/internal/config"
	"ptx/internal/domain"
	"ptx/internal/framework"
	"ptx/internal/tree"
	"ptx/internal/workspace"
)

var (
	// ErrNoFile is reported for nodes without a backing file
	ErrNoFile = errors.New("node has no backing file")
	// ErrOutsideRoots is reported for files no open project root owns
	ErrOutsideRoots = errors.New("file is outside every open project root")
)

const cancelledMessage = "run cancelled"

// Resolver parses a file node's children on demand
type Resolver interface {
	Resolve(file *tree.Node)
}

// Runner executes nodes of one framework one after the other
type Runner struct {
	fw       framework.Framework
	ws       *workspace.Workspace
	resolver Resolver
	runtime  *ContainerRuntime
	logger   zerolog.Logger
}

// NewRunner creates a new Runner
func NewRunner(
	fw framework.Framework,
	ws *workspace.Workspace,
	resolver Resolver,
	runtime *ContainerRuntime,
	logger zerolog.Logger,
) *Runner {
	return &Runner{
		fw:       fw,
		ws:       ws,
		resolver: resolver,
		runtime:  runtime,
		logger:   logger,
	}
}

// Execute runs nodes in the given order. Every node ends the batch in a
// terminal state, or with its cases settled by per-case results. Once ctx is
// done the remaining nodes are skipped without being spawned.
func (r *Runner) Execute(ctx context.Context, run *tree.Run, settings config.Framework, nodes []*tree.Node) {
	for _, n := range nodes {
		run.Enqueued(n)
	}
	if len(nodes) == 0 {
		return
	}

	container := r.useContainer(ctx, settings)
	for i, n := range nodes {
		if ctx.Err() != nil {
			run.Skipped(n, cancelledMessage)
			continue
		}
		r.runNode(ctx, run, settings, container, i, n)
	}
}

// useContainer decides the execution mode for one batch
func (r *Runner) useContainer(ctx context.Context, settings config.Framework) bool {
	if !settings.UseContainer || r.runtime == nil {
		return false
	}
	if err := r.runtime.Available(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("container runtime unavailable, running natively")
		return false
	}
	r.logger.Debug().Msg("running in containers")
	return true
}

func (r *Runner) runNode(ctx context.Context, run *tree.Run, settings config.Framework, container bool, seq int, n *tree.Node) {
	file, root, err := r.resolve(n)
	if err != nil {
		r.logger.Debug().Err(err).Str("node", n.ID).Msg("cannot resolve node")
		run.Errored(n, err.Error())
		return
	}

	if !file.Parsed() && file.CanResolveChildren && r.resolver != nil {
		r.resolver.Resolve(file)
	}

	inv, err := r.invocation(run.ID, settings, container, seq, n, file, root)
	if err != nil {
		run.Errored(n, err.Error())
		return
	}

	run.Begin(n)
	r.logger.Debug().
		Str("node", n.ID).
		Str("dir", inv.Dir).
		Str("argv", inv.String()).
		Msg("spawning")

	var (
		nodeCtx context.Context
		cancel  context.CancelFunc
	)
	timeout := settings.TimeoutDuration()
	if timeout > 0 {
		nodeCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		nodeCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	outcome, err := spawn(nodeCtx, inv, func(chunk string) {
		run.AppendOutput(n, chunk)
	})
	elapsed := time.Since(start)

	if nodeCtx.Err() != nil {
		if inv.Container != "" {
			r.runtime.Remove(inv.Container)
		}
		if ctx.Err() == nil && errors.Is(nodeCtx.Err(), context.DeadlineExceeded) {
			r.logger.Warn().Str("node", n.ID).Dur("timeout", timeout).Msg("test process timed out")
			run.Skipped(n, fmt.Sprintf("timed out after %s", timeout))
			return
		}
		r.logger.Info().Str("node", n.ID).Msg("test process cancelled")
		run.Skipped(n, cancelledMessage)
		return
	}
	if err != nil {
		run.Errored(n, err.Error())
		return
	}

	r.settle(run, n, outcome, elapsed)
}

// resolve finds the node's file and the root that owns it
func (r *Runner) resolve(n *tree.Node) (*tree.Node, domain.ProjectRoot, error) {
	file := n.File()
	if file == nil || file.Location.Path == "" {
		return nil, domain.ProjectRoot{}, fmt.Errorf("%s: %w", n.ID, ErrNoFile)
	}
	root, ok := r.ws.OwnerOf(file.Location.Path)
	if !ok {
		return nil, domain.ProjectRoot{}, fmt.Errorf("%s: %w", file.Location.Path, ErrOutsideRoots)
	}
	return file, root, nil
}

// invocation builds the argument vector for one node
func (r *Runner) invocation(
	runID string,
	settings config.Framework,
	container bool,
	seq int,
	n, file *tree.Node,
	root domain.ProjectRoot,
) (Invocation, error) {
	env, err := rootEnv(root.Path)
	if err != nil {
		r.logger.Warn().Err(err).Str("root", root.Name).Msg("ignoring environment file")
	}

	args := []string{r.ws.RelativeTo(file.Location.Path)}
	args = append(args, r.fw.FormatArgs...)
	args = append(args, r.fw.FilterArgs(n)...)

	if container {
		command := append(strings.Fields(settings.ContainerCommand), args...)
		name := fmt.Sprintf("ptx-%s-%d", runID, seq+1)
		inv := r.runtime.Invocation(name, settings.Image, root.Path, r.ws.ToContainerMountPath(root.Path), env, command)
		inv.Env = os.Environ()
		return inv, nil
	}

	if settings.Executable == "" {
		return Invocation{}, fmt.Errorf("%s: no executable configured", r.fw.Name)
	}
	return Invocation{
		Name: settings.Executable,
		Args: args,
		Dir:  root.Path,
		Env:  append(os.Environ(), pairs(env)...),
	}, nil
}

// settle maps a finished process onto node states
func (r *Runner) settle(run *tree.Run, n *tree.Node, outcome Outcome, elapsed time.Duration) {
	if outcome.ExitCode != 0 && outcome.ExitCode != r.fw.FailureExitCode {
		message := fmt.Sprintf("%s exited with code %d", r.fw.Name, outcome.ExitCode)
		if stderr := excerpt(outcome.Stderr); stderr != "" {
			message += ": " + stderr
		}
		run.Errored(n, message)
		return
	}

	results, unmatched := r.fw.Results.ParseResults(outcome.Stdout)
	for _, line := range unmatched {
		r.logger.Debug().Str("node", n.ID).Str("line", line).Msg("unrecognised output line")
	}

	if r.correlate(run, n, results) > 0 {
		return
	}

	if outcome.ExitCode == 0 {
		run.Passed(n, elapsed)
		return
	}
	message := excerpt(outcome.Stderr)
	if message == "" {
		message = fmt.Sprintf("%s reported failures", r.fw.Name)
	}
	run.Failed(n, message, elapsed)
}

// correlate applies per-case results to the case nodes beneath n and returns
// how many matched.
func (r *Runner) correlate(run *tree.Run, n *tree.Node, results []domain.CaseResult) int {
	if len(results) == 0 {
		return 0
	}

	byKey := make(map[string]*tree.Node)
	for _, leaf := range n.Leaves() {
		key := r.fw.LabelKey(leaf.Label)
		if _, ok := byKey[key]; !ok {
			byKey[key] = leaf
		}
	}

	matched := 0
	for _, res := range results {
		leaf, ok := byKey[r.fw.ResultKey(res.Name)]
		if !ok {
			r.logger.Debug().Str("node", n.ID).Str("result", res.Name).Msg("no case matches result")
			continue
		}
		matched++
		switch res.Status {
		case domain.StatusPassed:
			run.Passed(leaf, res.Duration)
		case domain.StatusFailed:
			run.Failed(leaf, res.Message, res.Duration)
		case domain.StatusSkipped:
			run.Skipped(leaf, res.Message)
		}
	}
	return matched
}
