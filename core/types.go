package core

import (
	"fmt"
	"path"
	"strings"
)

type PackageName string

type TargetName string

// Label references a target declared in a BUILD file of the generated
// repository.
type Label struct {
	Package PackageName
	Target  TargetName
}

// LibraryLabel is the label of the library a normalized distribution name
// produces: the package and the target share the name.
func LibraryLabel(name string) Label {
	return Label{Package: PackageName(name), Target: TargetName(name)}
}

func (l Label) String() string {
	if l.Package != "" && path.Base(string(l.Package)) == string(l.Target) {
		return fmt.Sprintf("//%s", l.Package)
	}
	return fmt.Sprintf("//%s:%s", l.Package, l.Target)
}

type InvalidLabelErr string

func (err InvalidLabelErr) Error() string {
	return fmt.Sprintf("Invalid label: %s", string(err))
}

// ParseLabel parses s, resolving relative labels (`:foo` or `foo`) against
// the package `current`.
func ParseLabel(current PackageName, s string) (Label, error) {
	if s == "" {
		return Label{}, InvalidLabelErr(s)
	}

	if !strings.HasPrefix(s, "//") {
		target := strings.TrimPrefix(s, ":")
		if target == "" || strings.Contains(target, ":") {
			return Label{}, InvalidLabelErr(s)
		}
		return Label{Package: current, Target: TargetName(target)}, nil
	}

	rest := s[len("//"):]
	i := strings.Index(rest, ":")
	if i < 0 {
		// `//foo/bar` is shorthand for `//foo/bar:bar`
		if rest == "" || strings.HasSuffix(rest, "/") {
			return Label{}, InvalidLabelErr(s)
		}
		return Label{
			Package: PackageName(rest),
			Target:  TargetName(path.Base(rest)),
		}, nil
	}

	packageName, target := rest[:i], rest[i+1:]
	if target == "" || strings.Contains(target, ":") {
		return Label{}, InvalidLabelErr(s)
	}
	if strings.HasPrefix(packageName, "./") ||
		strings.HasPrefix(packageName, "../") ||
		strings.HasSuffix(packageName, "/") {
		return Label{}, InvalidLabelErr(s)
	}

	return Label{
		Package: PackageName(packageName),
		Target:  TargetName(target),
	}, nil
}
