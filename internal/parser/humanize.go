package parser

import (
	"strings"
	"unicode"
)

const testPrefix = "test"

// Humanize mirrors the name prettifier of the testdox reporter. A leading
// "test" is stripped. A name holding underscores only has them turned into
// spaces. Any other name gets a space before every capital letter past the
// first character and before every run of digits. The result is lowercased
// and trimmed.
//
//	testAddsValues      -> adds values
//	test_it_adds_values -> it adds values
//	itRejectsInput      -> it rejects input
//	testAdds2Values     -> adds 2 values
//	testMixed_styleName -> mixed stylename
func Humanize(method string) string {
	name := stripTestPrefix(strings.TrimSpace(method))
	if strings.ContainsRune(name, '_') {
		return NormalizeName(strings.ReplaceAll(name, "_", " "))
	}

	var b strings.Builder
	inDigits := false
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		digit := unicode.IsDigit(r)
		if digit && !inDigits {
			b.WriteByte(' ')
		}
		inDigits = digit
		b.WriteRune(unicode.ToLower(r))
	}
	return NormalizeName(b.String())
}

// NormalizeName lowercases, trims and collapses inner whitespace so printed
// names compare case-insensitively with humanized method names.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// stripTestPrefix removes "test" when it is a word of its own, followed by a
// capital or an underscore, and not the whole name.
func stripTestPrefix(name string) string {
	if !strings.HasPrefix(name, testPrefix) || len(name) == len(testPrefix) {
		return name
	}
	next := rune(name[len(testPrefix)])
	if unicode.IsUpper(next) || next == '_' {
		return name[len(testPrefix):]
	}
	return name
}
