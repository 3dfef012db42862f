package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"ptx/internal/domain"
	"ptx/internal/tree"
)

// Suite is what the explorer needs from one framework
type Suite interface {
	Name() string
	Tree() *tree.Tree
	Resolve(file *tree.Node)
	Refresh(ctx context.Context) error
	Run(ctx context.Context, nodes []*tree.Node, observers ...tree.Observer) *tree.Run
}

// entry is the reference stored on every tview node. node is nil for the
// suite roots.
type entry struct {
	suite Suite
	node  *tree.Node
}

// targets returns the nodes a run of this entry covers
func (e entry) targets() []*tree.Node {
	if e.node == nil {
		return e.suite.Tree().Files()
	}
	return []*tree.Node{e.node}
}

// Explorer displays the test trees in an interactive TUI, expanding files on
// demand and running the selected node with live output.
type Explorer struct {
	suites    []Suite
	formatter *Formatter
	logger    zerolog.Logger

	app     *tview.Application
	view    *tview.TreeView
	header  *tview.TextView
	details *tview.TextView
	output  *tview.TextView

	mu      sync.Mutex
	results map[string]domain.RunResult
	items   map[string]*tview.TreeNode
	cancel  context.CancelFunc
}

// NewExplorer creates a new Explorer
func NewExplorer(suites []Suite, formatter *Formatter, logger zerolog.Logger) *Explorer {
	return &Explorer{
		suites:    suites,
		formatter: formatter,
		logger:    logger,
		results:   make(map[string]domain.RunResult),
		items:     make(map[string]*tview.TreeNode),
	}
}

// Run shows the explorer until the user quits or ctx is done
func (e *Explorer) Run(ctx context.Context) error {
	e.app = tview.NewApplication()

	root := tview.NewTreeNode("Tests").SetColor(tcell.ColorYellow).SetSelectable(false)
	e.view = tview.NewTreeView().SetRoot(root).SetTopLevel(1)
	e.view.SetBorder(true).SetTitle(" Tests ")
	e.populate(root)
	if children := root.GetChildren(); len(children) > 0 {
		e.view.SetCurrentNode(children[0])
	}

	e.header = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)
	e.setHeader("")

	e.details = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)
	e.details.SetBorder(true).SetTitle(" Details ")

	e.output = tview.NewTextView().
		SetScrollable(true).
		SetWrap(true)
	e.output.SetBorder(true).SetTitle(" Output ")

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(e.details, 0, 1, false).
		AddItem(e.output, 0, 2, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(e.view, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(e.header, 1, 0, false).
		AddItem(flex, 0, 1, true)

	e.view.SetSelectedFunc(e.toggle)
	e.view.SetChangedFunc(e.showDetails)
	e.view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			e.stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'r':
				e.runCurrent(ctx)
				return nil
			case 'c':
				e.cancelRun()
				return nil
			case 'R':
				e.refresh(ctx, root)
				return nil
			case 'q':
				e.stop()
				return nil
			}
		}
		return event
	})

	go func() {
		<-ctx.Done()
		e.app.Stop()
	}()

	e.showDetails(e.view.GetCurrentNode())
	if err := e.app.SetRoot(mainLayout, true).SetFocus(e.view).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func (e *Explorer) setHeader(status string) {
	text := " [yellow]Enter[white] expand | [yellow]r[white] run | [yellow]c[white] cancel | [yellow]R[white] refresh | [yellow]q[white] quit "
	if status != "" {
		text = status + " |" + text
	}
	e.header.SetText(text)
}

// populate adds one branch per suite with its file nodes
func (e *Explorer) populate(root *tview.TreeNode) {
	root.ClearChildren()
	e.mu.Lock()
	e.items = make(map[string]*tview.TreeNode)
	e.mu.Unlock()

	for _, s := range e.suites {
		files := s.Tree().Files()
		branch := tview.NewTreeNode(fmt.Sprintf("%s (%d)", s.Name(), len(files))).
			SetColor(tcell.ColorAqua).
			SetReference(entry{suite: s}).
			SetExpanded(true)
		for _, f := range files {
			branch.AddChild(e.item(s, f, e.formatter.DisplayPath(f.ID)))
		}
		root.AddChild(branch)
	}
}

func (e *Explorer) item(s Suite, n *tree.Node, label string) *tview.TreeNode {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := e.results[n.ID]
	tn := tview.NewTreeNode(itemText(label, result.Status)).
		SetColor(itemColor(result.Status)).
		SetReference(entry{suite: s, node: n}).
		SetExpanded(false)
	e.items[n.ID] = tn
	return tn
}

// toggle expands a node, parsing its file first when needed
func (e *Explorer) toggle(tn *tview.TreeNode) {
	ref, ok := tn.GetReference().(entry)
	if !ok {
		return
	}
	if ref.node != nil && len(tn.GetChildren()) == 0 {
		if ref.node.CanResolveChildren && !ref.node.Parsed() {
			ref.suite.Resolve(ref.node)
		}
		for _, c := range ref.node.Children() {
			tn.AddChild(e.item(ref.suite, c, c.Label))
		}
		tn.SetExpanded(true)
		return
	}
	tn.SetExpanded(!tn.IsExpanded())
}

func (e *Explorer) showDetails(tn *tview.TreeNode) {
	if tn == nil {
		return
	}
	ref, ok := tn.GetReference().(entry)
	if !ok {
		return
	}
	if ref.node == nil {
		e.details.SetText(fmt.Sprintf("[cyan]%s[white]\n%d file(s)", ref.suite.Name(), ref.suite.Tree().Len()))
		return
	}

	e.mu.Lock()
	result, seen := e.results[ref.node.ID]
	e.mu.Unlock()
	e.details.SetText(formatDetails(e.formatter.DisplayPath(ref.node.Location.Path), ref.node, result, seen))
}

// runCurrent runs the selected node in the background
func (e *Explorer) runCurrent(ctx context.Context) {
	tn := e.view.GetCurrentNode()
	if tn == nil {
		return
	}
	ref, ok := tn.GetReference().(entry)
	if !ok {
		return
	}

	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	e.output.Clear()
	e.setHeader("[yellow]running[white]")

	go func() {
		defer cancel()
		run := ref.suite.Run(runCtx, ref.targets(), &liveObserver{e: e})

		e.mu.Lock()
		e.cancel = nil
		e.mu.Unlock()

		e.app.QueueUpdateDraw(func() {
			e.setHeader(fmt.Sprintf("[green]finished[white] in %s", run.Duration().Round(time.Millisecond)))
			e.showDetails(e.view.GetCurrentNode())
		})
	}()
}

func (e *Explorer) cancelRun() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Explorer) refresh(ctx context.Context, root *tview.TreeNode) {
	e.mu.Lock()
	busy := e.cancel != nil
	e.mu.Unlock()
	if busy {
		return
	}
	for _, s := range e.suites {
		if err := s.Refresh(ctx); err != nil {
			e.logger.Error().Err(err).Str("framework", s.Name()).Msg("refresh failed")
		}
	}
	e.populate(root)
}

func (e *Explorer) stop() {
	e.cancelRun()
	e.app.Stop()
}

// liveObserver forwards run updates to the UI goroutine
type liveObserver struct {
	e *Explorer
}

func (o *liveObserver) StatusChanged(_ *tree.Run, n *tree.Node, result domain.RunResult) {
	o.e.mu.Lock()
	o.e.results[n.ID] = result
	tn := o.e.items[n.ID]
	o.e.mu.Unlock()

	o.e.app.QueueUpdateDraw(func() {
		if tn != nil {
			label := n.Label
			if n.Kind == domain.KindFile {
				label = o.e.formatter.DisplayPath(n.ID)
			}
			tn.SetText(itemText(label, result.Status)).SetColor(itemColor(result.Status))
		}
		if cur := o.e.view.GetCurrentNode(); cur == tn {
			o.e.showDetails(cur)
		}
	})
}

func (o *liveObserver) OutputAppended(_ *tree.Run, _ *tree.Node, chunk string) {
	o.e.app.QueueUpdateDraw(func() {
		fmt.Fprint(o.e.output, tview.Escape(chunk))
		o.e.output.ScrollToEnd()
	})
}

func itemText(label string, status domain.Status) string {
	if status == domain.StatusUnstarted {
		return label
	}
	return statusGlyph(status) + " " + label
}

func itemColor(status domain.Status) tcell.Color {
	switch status {
	case domain.StatusPassed:
		return tcell.ColorGreen
	case domain.StatusFailed, domain.StatusErrored:
		return tcell.ColorRed
	case domain.StatusSkipped:
		return tcell.ColorYellow
	case domain.StatusQueued, domain.StatusRunning:
		return tcell.ColorAqua
	default:
		return tcell.ColorWhite
	}
}

// formatDetails formats a node and its last result using tview color tags
func formatDetails(path string, n *tree.Node, result domain.RunResult, seen bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[cyan]%s[white] %s\n", n.Kind, tview.Escape(n.Label))
	fmt.Fprintf(&b, "[yellow]Location:[white] %s:%d\n", tview.Escape(path), n.Location.Line)
	if !seen {
		b.WriteString("\n[gray]not run yet[white]\n")
		return b.String()
	}
	fmt.Fprintf(&b, "[yellow]Status:[white] %s %s\n", statusGlyph(result.Status), result.Status)
	if result.Duration > 0 {
		fmt.Fprintf(&b, "[yellow]Duration:[white] %s\n", result.Duration)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "\n[yellow]Message:[white]\n%s\n", tview.Escape(result.Message))
	}
	return b.String()
}
