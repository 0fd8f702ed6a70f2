package dist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type InvalidEntryPointErr struct {
	Line   int
	Text   string
	Reason string
}

func (err InvalidEntryPointErr) Error() string {
	return fmt.Sprintf(
		"Invalid entry point on line %d ('%s'): %s",
		err.Line,
		err.Text,
		err.Reason,
	)
}

// parseEntryPoints reads an entry_points.txt file.
func parseEntryPoints(r io.Reader) (entryMap, error) {
	out := entryMap{}
	group := ""
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, InvalidEntryPointErr{lineNo, line, "unterminated section"}
			}
			group = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if group == "" {
			return nil, InvalidEntryPointErr{lineNo, line, "entry outside of a section"}
		}

		ep, err := parseEntryPoint(group, line)
		if err != nil {
			return nil, InvalidEntryPointErr{lineNo, line, err.Error()}
		}
		for _, existing := range out[group] {
			if existing.Name == ep.Name {
				return nil, InvalidEntryPointErr{
					lineNo,
					line,
					fmt.Sprintf("duplicate name '%s' in [%s]", ep.Name, group),
				}
			}
		}
		out[group] = append(out[group], ep)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Reading entry points")
	}
	return out, nil
}

// parseEntryPoint parses `name = module[:attr] [extras]`.
func parseEntryPoint(group, line string) (EntryPoint, error) {
	i := strings.Index(line, "=")
	if i < 0 {
		return EntryPoint{}, errors.New("missing '='")
	}
	ep := EntryPoint{Group: group, Name: strings.TrimSpace(line[:i])}
	value := strings.TrimSpace(line[i+1:])
	if ep.Name == "" || value == "" {
		return EntryPoint{}, errors.New("empty name or value")
	}

	if j := strings.Index(value, "["); j >= 0 {
		if !strings.HasSuffix(value, "]") {
			return EntryPoint{}, errors.New("unterminated extras")
		}
		for _, extra := range strings.Split(value[j+1:len(value)-1], ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				ep.Extras = append(ep.Extras, extra)
			}
		}
		value = strings.TrimSpace(value[:j])
	}

	ep.Module = value
	if j := strings.Index(value, ":"); j >= 0 {
		ep.Module = strings.TrimSpace(value[:j])
		ep.Attr = strings.TrimSpace(value[j+1:])
	}
	if ep.Module == "" {
		return EntryPoint{}, errors.New("empty module")
	}
	return ep, nil
}
