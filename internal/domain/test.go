package domain

// NodeKind tells which level of the test tree a node lives on
type NodeKind int

const (
	// KindFile is a discovered test source file
	KindFile NodeKind = iota
	// KindClass is a test class inside a file (unit-test framework only)
	KindClass
	// KindCase is a single test case or test method
	KindCase
)

// String makes NodeKind satisfy fmt.Stringer
func (k NodeKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindClass:
		return "class"
	case KindCase:
		return "case"
	default:
		return "unknown"
	}
}

// Location points at a line of a source file. Lines are 1-based.
type Location struct {
	Path string
	Line int
}

// TestItem is what a source parser extracts from a test file
type TestItem struct {
	Name     string     // Test case, class or method name, verbatim
	Kind     NodeKind   // KindClass or KindCase
	Line     int        // Line of the declaration
	Children []TestItem // Methods of a class
}
