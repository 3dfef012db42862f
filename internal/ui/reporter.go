package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"ptx/internal/domain"
	"ptx/internal/tree"
)

// Reporter prints one line per finished node and, when verbose, the raw
// process output as it arrives.
type Reporter struct {
	out     io.Writer
	verbose bool
	mu      sync.Mutex
}

// NewReporter creates a new Reporter
func NewReporter(out io.Writer, verbose bool) *Reporter {
	return &Reporter{out: out, verbose: verbose}
}

// StatusChanged implements tree.Observer
func (r *Reporter) StatusChanged(_ *tree.Run, n *tree.Node, result domain.RunResult) {
	if !result.Status.Terminal() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("%s %s", statusGlyph(result.Status), qualifiedName(n))
	if result.Duration > 0 {
		line += fmt.Sprintf(" (%s)", result.Duration.Round(time.Millisecond))
	}
	statusColor(result.Status).Fprintln(r.out, line)

	if result.Message != "" && result.Status != domain.StatusPassed {
		fmt.Fprintln(r.out, indent(result.Message, "    "))
	}
}

// OutputAppended implements tree.Observer
func (r *Reporter) OutputAppended(_ *tree.Run, _ *tree.Node, chunk string) {
	if !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, chunk)
}
