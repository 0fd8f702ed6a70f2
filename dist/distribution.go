// Package dist reads the metadata of Python distributions laid out on disk,
// either installed into a site-packages style directory or freshly unpacked
// from a wheel.
package dist

import (
	"fmt"
	"sort"
	"strings"
)

// Distribution is the narrow view of an installed Python distribution that
// the descriptor generator needs. Implementations are immutable once
// constructed.
type Distribution interface {
	// Location is the root of the distribution's installed tree.
	Location() string

	// ProjectName is the name as declared by the package, not normalized.
	ProjectName() string

	Version() string

	// Requires lists the requirements that apply when no extras are
	// requested, in declaration order.
	Requires() []Requirement

	// EntryPoints lists the entry points of a group (e.g.
	// "console_scripts") sorted by name.
	EntryPoints(group string) []EntryPoint
}

const ConsoleScripts = "console_scripts"

// EntryPoint is a named reference to a callable inside a distribution.
type EntryPoint struct {
	Group  string
	Name   string
	Module string
	Attr   string
	Extras []string
}

// Spec renders the entry point the way entry_points.txt declares it.
func (ep EntryPoint) Spec() string {
	s := fmt.Sprintf("%s = %s", ep.Name, ep.Module)
	if ep.Attr != "" {
		s += ":" + ep.Attr
	}
	if len(ep.Extras) > 0 {
		s += fmt.Sprintf(" [%s]", strings.Join(ep.Extras, ","))
	}
	return s
}

type entryMap map[string][]EntryPoint

func (m entryMap) group(group string) []EntryPoint {
	eps := m[group]
	out := make([]EntryPoint, len(eps))
	copy(out, eps)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
