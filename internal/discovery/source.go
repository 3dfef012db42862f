package discovery

import (
	"regexp"
	"strings"

	"ptx/internal/domain"
)

// SourceParser extracts test items from the text of one test file.
// Parsing is pure: the same text always yields the same items.
type SourceParser interface {
	Parse(text string) []domain.TestItem
}

// annotationLookahead is how many lines after an annotation may hold the method
const annotationLookahead = 4

var (
	batsTest = regexp.MustCompile(`^\s*@test\s+(?:"(.+)"|'(.+)')\s*\{`)

	phpClass         = regexp.MustCompile(`^\s*(?:(?:final|abstract|readonly)\s+)*class\s+(\w+Test)\s+extends\s+`)
	phpAnyClass      = regexp.MustCompile(`^\s*(?:(?:final|abstract|readonly)\s+)*class\s+\w+`)
	phpTestMethod    = regexp.MustCompile(`^\s*(?:(?:public|protected|private|static|final|abstract)\s+)*function\s+(test\w*)\s*\(`)
	phpInlineMethod  = regexp.MustCompile(`\bfunction\s+(test\w*)\s*\(`)
	phpMethod        = regexp.MustCompile(`^\s*(?:(?:public|protected|private|static|final|abstract)\s+)*function\s+(\w+)\s*\(`)
	phpAnnotation    = regexp.MustCompile(`^\s*(?:/\*\*)?\s*\*?\s*@test\s*(?:\*/)?\s*$`)
	phpTestAttribute = regexp.MustCompile(`^\s*#\[\s*(?:\\?PHPUnit\\Framework\\Attributes\\)?Test\s*\]\s*$`)
)

// BatsParser parses bats files: one `@test "name" {` declaration per line
type BatsParser struct{}

// NewBatsParser creates a new BatsParser
func NewBatsParser() *BatsParser {
	return &BatsParser{}
}

// Parse implements SourceParser
func (p *BatsParser) Parse(text string) []domain.TestItem {
	var items []domain.TestItem
	seen := make(map[string]bool)

	for i, line := range splitLines(text) {
		m := batsTest.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		items = append(items, domain.TestItem{Name: name, Kind: domain.KindCase, Line: i + 1})
	}
	return items
}

// PHPUnitParser parses PHPUnit test classes. Only the first `class ...Test extends`
// of a file is used. Methods count as tests when named test* or when an
// @test annotation or #[Test] attribute precedes them within a few lines.
type PHPUnitParser struct{}

// NewPHPUnitParser creates a new PHPUnitParser
func NewPHPUnitParser() *PHPUnitParser {
	return &PHPUnitParser{}
}

// Parse implements SourceParser
func (p *PHPUnitParser) Parse(text string) []domain.TestItem {
	lines := splitLines(text)

	classLine := -1
	var class domain.TestItem
	var rest string
	for i, line := range lines {
		if m := phpClass.FindStringSubmatchIndex(line); m != nil {
			classLine = i
			class = domain.TestItem{Name: line[m[2]:m[3]], Kind: domain.KindClass, Line: i + 1}
			rest = line[m[1]:]
			break
		}
	}
	if classLine < 0 {
		return nil
	}

	seen := make(map[string]bool)
	add := func(name string, line int) {
		if seen[name] {
			return
		}
		seen[name] = true
		class.Children = append(class.Children, domain.TestItem{Name: name, Kind: domain.KindCase, Line: line + 1})
	}

	// Methods sharing the class line, as in a one-line class body
	for _, m := range phpInlineMethod.FindAllStringSubmatch(rest, -1) {
		add(m[1], classLine)
	}

	for i := classLine + 1; i < len(lines); i++ {
		line := lines[i]
		if phpAnyClass.MatchString(line) {
			break
		}
		if m := phpTestMethod.FindStringSubmatch(line); m != nil {
			add(m[1], i)
			continue
		}
		if !phpAnnotation.MatchString(line) && !phpTestAttribute.MatchString(line) {
			continue
		}
		for j := i + 1; j < len(lines) && j <= i+annotationLookahead; j++ {
			if m := phpMethod.FindStringSubmatch(lines[j]); m != nil {
				add(m[1], j)
				i = j
				break
			}
		}
	}

	return []domain.TestItem{class}
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
