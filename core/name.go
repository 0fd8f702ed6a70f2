package core

import (
	"regexp"
	"strings"
)

var separatorRuns = regexp.MustCompile(`[-_.]+`)

// NormalizeName maps a distribution's project name onto the identifier used
// both for its library target and for every label that refers to it. Runs of
// '-', '_' and '.' collapse into a single '_' and the result is lowercased, so
// `Foo.Bar`, `foo_bar` and `FOO-BAR` all become `foo_bar`.
func NormalizeName(raw string) string {
	return strings.ToLower(separatorRuns.ReplaceAllString(raw, "_"))
}
