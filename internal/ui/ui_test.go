package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptx/internal/domain"
	"ptx/internal/tree"
	"ptx/internal/workspace"
)

func sample() (*tree.Node, *tree.Node, *tree.Node) {
	file := tree.NewNode("/work/project/test/math.bats", "math.bats", domain.KindFile,
		domain.Location{Path: "/work/project/test/math.bats", Line: 1})
	adds := tree.NewNode(file.ChildID("adds"), "adds", domain.KindCase, domain.Location{Path: file.ID, Line: 3})
	fails := tree.NewNode(file.ChildID("fails"), "fails", domain.KindCase, domain.Location{Path: file.ID, Line: 7})
	file.ReplaceChildren([]*tree.Node{adds, fails})
	return file, adds, fails
}

func newWorkspace() *workspace.Workspace {
	return workspace.New(zerolog.Nop(), domain.ProjectRoot{Name: "project", Path: "/work/project"})
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	file, adds, fails := sample()
	r := NewReporter(&buf, false)
	run := tree.NewRun("run-1", "bats", r)

	run.Begin(file)
	run.Passed(adds, 12*time.Millisecond)
	run.Failed(fails, "expected 1\ngot 2", 0)
	run.AppendOutput(file, "raw output\n")

	out := buf.String()
	assert.NotContains(t, out, "math.bats\n", "non-terminal transitions are not printed")
	assert.Contains(t, out, "✓ math.bats > adds (12ms)")
	assert.Contains(t, out, "✗ math.bats > fails")
	assert.Contains(t, out, "    expected 1\n    got 2")
	assert.NotContains(t, out, "raw output")
}

func TestReporter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	file, _, _ := sample()
	run := tree.NewRun("run-1", "bats", NewReporter(&buf, true))

	run.AppendOutput(file, "raw output\n")
	assert.Equal(t, "raw output\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	file, adds, fails := sample()
	other := tree.NewNode("/work/project/other.bats", "other.bats", domain.KindFile, domain.Location{})
	p := NewProgressBar([]*tree.Node{file, other}, &buf)
	run := tree.NewRun("run-1", "bats", p)

	run.Begin(file)
	run.Passed(adds, 0)
	assert.Equal(t, 0, p.completed(), "one case is still pending")
	run.Failed(fails, "", 0)
	assert.Equal(t, 1, p.completed(), "the file completes once its cases settle")

	run.Begin(other)
	assert.Equal(t, 1, p.completed())

	run.Errored(other, "boom")
	assert.Equal(t, 2, p.completed())
	p.Finish()

	passed, failed := p.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, failed)
}

func TestProgressBar_LastFileCompletesWithItsCases(t *testing.T) {
	var buf bytes.Buffer
	first := tree.NewNode("/work/project/first.bats", "first.bats", domain.KindFile, domain.Location{})
	file, adds, fails := sample()
	p := NewProgressBar([]*tree.Node{first, file}, &buf)
	run := tree.NewRun("run-1", "bats", p)

	run.Begin(first)
	run.Passed(first, 0)
	run.Begin(file)
	run.Passed(adds, 0)
	run.Skipped(fails, "skipped")
	assert.Equal(t, 2, p.completed())
	assert.Equal(t, domain.StatusRunning, run.Result(file).Status)
}

func TestFormatter_PrintTestList(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, newWorkspace())
	file, _, _ := sample()
	empty := tree.NewNode("/work/project/empty.bats", "empty.bats", domain.KindFile, domain.Location{})
	resolved := 0

	f.PrintTestList("bats", []*tree.Node{file, empty}, true, func(*tree.Node) { resolved++ })

	out := buf.String()
	assert.Contains(t, out, "bats: found 2 test file(s)")
	assert.Contains(t, out, "├── project/test/math.bats")
	assert.Contains(t, out, "│   ├── adds :3")
	assert.Contains(t, out, "│   └── fails :7")
	assert.Contains(t, out, "└── project/empty.bats")
	assert.Contains(t, out, "    └── (no test cases found)")
	assert.Equal(t, 1, resolved, "only unparsed files are resolved")
}

func TestFormatter_PrintSummary(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, newWorkspace())
	reports := []domain.RunReport{{
		Meta: domain.RunReportMeta{Framework: "bats", Total: 2, Passed: 1, Failed: 1, Duration: "15ms"},
		Results: []domain.NodeReport{
			{ID: "/work/project/test/math.bats::adds", Label: "adds", Status: domain.StatusPassed},
			{ID: "/work/project/test/math.bats::fails", Label: "fails", Status: domain.StatusFailed, Message: "boom"},
		},
	}}

	f.PrintSummary(reports)

	out := buf.String()
	assert.Contains(t, out, "FRAMEWORK")
	assert.Contains(t, out, "bats")
	assert.Contains(t, out, "✗ 1 failed, 0 errored")
	assert.Contains(t, out, "project/test/math.bats")
	assert.Contains(t, out, "└── ✗ fails")
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "✗ adds")
}

func TestFormatter_PrintSummaryAllPassed(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, newWorkspace())
	f.PrintSummary([]domain.RunReport{{Meta: domain.RunReportMeta{Framework: "phpunit", Total: 1, Passed: 1}}})
	assert.Contains(t, buf.String(), "✓ All tests passed!")
}

func TestFormatter_DisplayPath(t *testing.T) {
	f := NewFormatter(nil, newWorkspace())
	assert.Equal(t, "project/test/math.bats", f.DisplayPath("/work/project/test/math.bats"))
	assert.Equal(t, "/elsewhere/x.bats", f.DisplayPath("/elsewhere/x.bats"))
}

func TestExplorerHelpers(t *testing.T) {
	assert.Equal(t, "adds", itemText("adds", domain.StatusUnstarted))
	assert.Equal(t, "✓ adds", itemText("adds", domain.StatusPassed))
	assert.Equal(t, tcell.ColorRed, itemColor(domain.StatusErrored))

	file, adds, _ := sample()
	details := formatDetails("project/test/math.bats", adds, domain.RunResult{}, false)
	assert.Contains(t, details, "project/test/math.bats:3")
	assert.Contains(t, details, "not run yet")

	details = formatDetails("project/test/math.bats", adds, domain.RunResult{
		Status:  domain.StatusFailed,
		Message: "expected [1]",
	}, true)
	assert.Contains(t, details, "✗ failed")
	assert.Contains(t, details, "expected [1[]")

	tr := tree.New()
	tr.Add(file)
	suite := &fakeSuite{tree: tr}
	require.Len(t, entry{suite: suite}.targets(), 1)
	assert.Equal(t, []*tree.Node{adds}, entry{suite: suite, node: adds}.targets())
}

func TestQualifiedName(t *testing.T) {
	_, adds, _ := sample()
	assert.Equal(t, "math.bats > adds", qualifiedName(adds))
}
