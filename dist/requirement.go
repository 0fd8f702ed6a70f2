package dist

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Requirement is a PEP 508 dependency specification.
type Requirement struct {
	Name      string
	Extras    []string
	Specifier string
	URL       string
	Marker    *Marker
}

func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
	} else {
		b.WriteString(r.Specifier)
	}
	if r.Marker != nil {
		b.WriteString("; " + r.Marker.String())
	}
	return b.String()
}

// AppliesTo reports whether the requirement's marker (if any) holds in env.
func (r Requirement) AppliesTo(env *Environment) bool {
	return r.Marker == nil || r.Marker.Evaluate(env)
}

var requirementRE = regexp.MustCompile(
	`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*)$`,
)

type InvalidRequirementErr string

func (err InvalidRequirementErr) Error() string {
	return "Invalid requirement: " + string(err)
}

// ParseRequirement parses a requirement as found in Requires-Dist headers,
// requires.txt files and requirements files (without pip options).
func ParseRequirement(s string) (Requirement, error) {
	spec, markerText := strings.TrimSpace(s), ""
	if i := strings.Index(spec, ";"); i >= 0 {
		spec, markerText = strings.TrimSpace(spec[:i]), strings.TrimSpace(spec[i+1:])
	}

	m := requirementRE.FindStringSubmatch(spec)
	if m == nil {
		return Requirement{}, InvalidRequirementErr(s)
	}

	r := Requirement{Name: m[1]}
	for _, extra := range strings.Split(m[2], ",") {
		if extra = strings.TrimSpace(extra); extra != "" {
			r.Extras = append(r.Extras, extra)
		}
	}

	rest := strings.TrimSpace(m[3])
	switch {
	case strings.HasPrefix(rest, "@"):
		r.URL = strings.TrimSpace(rest[1:])
		if r.URL == "" {
			return Requirement{}, InvalidRequirementErr(s)
		}
	case strings.HasPrefix(rest, "("):
		if !strings.HasSuffix(rest, ")") {
			return Requirement{}, InvalidRequirementErr(s)
		}
		r.Specifier = strings.ReplaceAll(rest[1:len(rest)-1], " ", "")
	default:
		r.Specifier = strings.ReplaceAll(rest, " ", "")
	}

	if markerText != "" {
		marker, err := ParseMarker(markerText)
		if err != nil {
			return Requirement{}, errors.Wrapf(err, "Parsing requirement '%s'", s)
		}
		r.Marker = marker
	}
	return r, nil
}
