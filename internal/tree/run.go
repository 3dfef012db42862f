package tree

import (
	"strings"
	"sync"
	"time"

	"ptx/internal/domain"
)

// Observer receives the state transitions and output of a run
type Observer interface {
	// StatusChanged is called after every accepted transition
	StatusChanged(run *Run, n *Node, result domain.RunResult)
	// OutputAppended is called for every chunk of process output
	OutputAppended(run *Run, n *Node, chunk string)
}

type nodeState struct {
	node     *Node
	status   domain.Status
	message  string
	duration time.Duration
	output   strings.Builder
}

// Run is the state of one run batch. Results are transient and only live as
// long as the Run value.
type Run struct {
	ID        string
	Framework string
	Started   time.Time

	mu        sync.Mutex
	states    map[string]*nodeState
	order     []string
	observers []Observer
	ended     bool
	duration  time.Duration
}

// NewRun creates a run with the given observers
func NewRun(id, framework string, observers ...Observer) *Run {
	return &Run{
		ID:        id,
		Framework: framework,
		Started:   time.Now(),
		states:    make(map[string]*nodeState),
		observers: observers,
	}
}

// Enqueued marks the node as waiting to run
func (r *Run) Enqueued(n *Node) bool {
	return r.transition(n, domain.StatusQueued, "", 0)
}

// Begin marks the node as running
func (r *Run) Begin(n *Node) bool {
	return r.transition(n, domain.StatusRunning, "", 0)
}

// Passed marks the node as passed
func (r *Run) Passed(n *Node, d time.Duration) bool {
	return r.transition(n, domain.StatusPassed, "", d)
}

// Failed marks the node as failed with a message
func (r *Run) Failed(n *Node, message string, d time.Duration) bool {
	return r.transition(n, domain.StatusFailed, message, d)
}

// Skipped marks the node as skipped
func (r *Run) Skipped(n *Node, message string) bool {
	return r.transition(n, domain.StatusSkipped, message, 0)
}

// Errored marks the node as errored with a message
func (r *Run) Errored(n *Node, message string) bool {
	return r.transition(n, domain.StatusErrored, message, 0)
}

// AppendOutput adds process output to the node's buffer
func (r *Run) AppendOutput(n *Node, chunk string) {
	if chunk == "" {
		return
	}
	r.mu.Lock()
	st := r.state(n)
	st.output.WriteString(chunk)
	observers := r.observers
	r.mu.Unlock()

	for _, o := range observers {
		o.OutputAppended(r, n, chunk)
	}
}

// Result returns the current state of the node in this run
func (r *Run) Result(n *Node) domain.RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[n.ID]
	if !ok {
		return domain.RunResult{Status: domain.StatusUnstarted}
	}
	return st.result()
}

// Nodes returns every node touched by the run in first-touch order
func (r *Run) Nodes() []*Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	nodes := make([]*Node, 0, len(r.order))
	for _, id := range r.order {
		nodes = append(nodes, r.states[id].node)
	}
	return nodes
}

// End closes the run; later transitions are ignored
func (r *Run) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ended {
		r.ended = true
		r.duration = time.Since(r.Started)
	}
}

// Duration is the wall time of the run, known once it ended
func (r *Run) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

// transition applies a status change unless the node already reached a
// terminal state in this run.
func (r *Run) transition(n *Node, status domain.Status, message string, d time.Duration) bool {
	r.mu.Lock()
	if r.ended {
		r.mu.Unlock()
		return false
	}
	st := r.state(n)
	if st.status.Terminal() {
		r.mu.Unlock()
		return false
	}
	st.status = status
	st.message = message
	st.duration = d
	result := st.result()
	observers := r.observers
	r.mu.Unlock()

	for _, o := range observers {
		o.StatusChanged(r, n, result)
	}
	return true
}

func (r *Run) state(n *Node) *nodeState {
	st, ok := r.states[n.ID]
	if !ok {
		st = &nodeState{node: n}
		r.states[n.ID] = st
		r.order = append(r.order, n.ID)
	}
	return st
}

func (s *nodeState) result() domain.RunResult {
	return domain.RunResult{
		Status:   s.status,
		Message:  s.message,
		Duration: s.duration,
		Output:   s.output.String(),
	}
}
