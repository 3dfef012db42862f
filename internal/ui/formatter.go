package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"ptx/internal/domain"
	"ptx/internal/tree"
	"ptx/internal/workspace"
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
	ws  *workspace.Workspace
}

// NewFormatter creates a new Formatter
func NewFormatter(out io.Writer, ws *workspace.Workspace) *Formatter {
	return &Formatter{out: out, ws: ws}
}

// DisplayPath shows path as "<root>/<relative path>", or unchanged when no
// root owns it.
func (f *Formatter) DisplayPath(path string) string {
	owner, ok := f.ws.OwnerOf(path)
	if !ok {
		return path
	}
	return owner.Name + "/" + f.ws.RelativeTo(path)
}

// PrintTestList prints the file nodes of one framework, optionally with
// their children. resolve is called for files not parsed yet.
func (f *Formatter) PrintTestList(framework string, files []*tree.Node, showTestCases bool, resolve func(*tree.Node)) {
	color.New(color.FgGreen).Fprintf(f.out, "%s: found %d test file(s)\n", framework, len(files))

	for i, file := range files {
		isLastFile := i == len(files)-1
		connector := "├── "
		if isLastFile {
			connector = "└── "
		}
		color.New(color.FgCyan).Fprintf(f.out, "%s%s\n", connector, f.DisplayPath(file.ID))

		if !showTestCases {
			continue
		}
		if !file.Parsed() && resolve != nil {
			resolve(file)
		}

		prefix := "│   "
		if isLastFile {
			prefix = "    "
		}
		children := file.Children()
		if len(children) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", prefix, color.RedString("(no test cases found)"))
			continue
		}
		f.printChildren(children, prefix)
	}
}

func (f *Formatter) printChildren(children []*tree.Node, prefix string) {
	for i, c := range children {
		isLast := i == len(children)-1
		connector, next := "├── ", prefix+"│   "
		if isLast {
			connector, next = "└── ", prefix+"    "
		}

		label := c.Label
		if c.Kind == domain.KindClass {
			label = color.MagentaString(label)
		} else {
			label = color.YellowString(label)
		}
		fmt.Fprintf(f.out, "%s%s%s %s\n", prefix, connector, label, color.HiBlackString(":%d", c.Location.Line))
		f.printChildren(c.Children(), next)
	}
}

// PrintSummary prints a table of the run reports and the failed nodes
func (f *Formatter) PrintSummary(reports []domain.RunReport) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("FRAMEWORK"),
		text.FgHiCyan.Sprint("TOTAL"),
		text.FgHiCyan.Sprint("PASSED"),
		text.FgHiCyan.Sprint("FAILED"),
		text.FgHiCyan.Sprint("SKIPPED"),
		text.FgHiCyan.Sprint("ERRORED"),
		text.FgHiCyan.Sprint("DURATION"),
	})

	var failed, errored int
	for _, r := range reports {
		m := r.Meta
		t.AppendRow(table.Row{m.Framework, m.Total, m.Passed, m.Failed, m.Skipped, m.Errored, m.Duration})
		failed += m.Failed
		errored += m.Errored
	}
	t.Render()

	fmt.Fprintln(f.out)
	if failed == 0 && errored == 0 {
		color.New(color.FgGreen).Fprintln(f.out, "✓ All tests passed!")
		return
	}
	color.New(color.FgRed).Fprintf(f.out, "✗ %d failed, %d errored\n", failed, errored)
	fmt.Fprintln(f.out)
	f.printFailures(reports)
}

// printFailures prints the failed and errored nodes grouped by file
func (f *Formatter) printFailures(reports []domain.RunReport) {
	byFile := make(map[string][]domain.NodeReport)
	for _, r := range reports {
		for _, n := range r.Results {
			if n.Status != domain.StatusFailed && n.Status != domain.StatusErrored {
				continue
			}
			file := n.ID
			if i := strings.Index(file, tree.IDSeparator); i >= 0 {
				file = file[:i]
			}
			byFile[file] = append(byFile[file], n)
		}
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		color.New(color.FgYellow).Fprintln(f.out, f.DisplayPath(file))
		nodes := byFile[file]
		for i, n := range nodes {
			connector, prefix := "  ├── ", "  │   "
			if i == len(nodes)-1 {
				connector, prefix = "  └── ", "      "
			}
			name := n.Label
			if n.ID == file {
				name = "(whole file)"
			}
			color.New(color.FgRed).Fprintf(f.out, "%s%s %s\n", connector, statusGlyph(n.Status), name)
			if n.Message != "" {
				fmt.Fprintln(f.out, indent(n.Message, prefix+"  "))
			}
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
