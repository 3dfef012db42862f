package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"ptx/internal/domain"
	"ptx/internal/tree"
)

// ProgressBar follows a run batch. A batch node counts as done once it
// reached a terminal state, every case beneath it did, or the next batch
// node started.
type ProgressBar struct {
	bar            *progressbar.ProgressBar
	mu             sync.Mutex
	batch          map[string]int
	done           []bool
	passed, failed int
}

// NewProgressBar creates a new progress bar over the batch nodes
func NewProgressBar(nodes []*tree.Node, w io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(len(nodes),
		progressbar.OptionSetDescription(description(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	batch := make(map[string]int, len(nodes))
	for i, n := range nodes {
		batch[n.ID] = i
	}
	return &ProgressBar{bar: bar, batch: batch, done: make([]bool, len(nodes))}
}

func description(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[success: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

// StatusChanged implements tree.Observer
func (p *ProgressBar) StatusChanged(run *tree.Run, n *tree.Node, result domain.RunResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.batch[n.ID]; ok {
		switch {
		case result.Status == domain.StatusRunning:
			for i := 0; i < idx; i++ {
				p.done[i] = true
			}
		case result.Status.Terminal():
			p.done[idx] = true
		}
	} else if result.Status.Terminal() {
		if parent, idx, ok := p.batchAncestor(n); ok && settled(run, parent) {
			p.done[idx] = true
		}
	}

	switch result.Status {
	case domain.StatusPassed:
		p.passed++
	case domain.StatusFailed, domain.StatusErrored:
		p.failed++
	}

	_ = p.bar.Set(p.completed())
	p.bar.Describe(description(p.passed, p.failed))
}

// OutputAppended implements tree.Observer
func (p *ProgressBar) OutputAppended(*tree.Run, *tree.Node, string) {}

// Counts returns the passed and failed results seen so far
func (p *ProgressBar) Counts() (passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.passed, p.failed
}

func (p *ProgressBar) batchAncestor(n *tree.Node) (*tree.Node, int, bool) {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if idx, ok := p.batch[cur.ID]; ok {
			return cur, idx, true
		}
	}
	return nil, 0, false
}

// settled reports whether every case beneath n is terminal in run
func settled(run *tree.Run, n *tree.Node) bool {
	for _, leaf := range n.Leaves() {
		if !run.Result(leaf).Status.Terminal() {
			return false
		}
	}
	return true
}

func (p *ProgressBar) completed() int {
	count := 0
	for _, d := range p.done {
		if d {
			count++
		}
	}
	return count
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}
