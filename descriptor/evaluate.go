package descriptor

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/pkg/errors"
	"github.com/weberc2/piprules/core"
	"go.starlark.net/starlark"
)

// Glob is the value of a glob() call: file patterns relative to the package
// directory.
type Glob struct {
	Package core.PackageName
	Include []string
	Exclude []string
}

func (g Glob) Freeze() {}

func (g Glob) String() string {
	return fmt.Sprintf(
		"glob([%s], exclude = [%s])",
		stringList(g.Include),
		stringList(g.Exclude),
	)
}

func (g Glob) Type() string { return "glob" }

func (g Glob) Truth() starlark.Bool { return starlark.Bool(true) }

func (g Glob) Hash() (uint32, error) {
	return starlark.String(string(g.Package) + g.String()).Hash()
}

// Sources is an attribute holding either explicit files or a glob.
type Sources struct {
	Files []string
	Glob  *Glob
}

type Rule struct {
	Kind       string
	Name       string
	Srcs       Sources
	Data       Sources
	Deps       []string
	Imports    []string
	Visibility []string
	Main       string
}

// Package holds the rules declared by one BUILD file.
type Package struct {
	Root    string
	Name    core.PackageName
	Rules   []Rule
	Exports []string

	subpackages map[string]bool
}

func (p *Package) Dir() string {
	return filepath.Join(p.Root, filepath.FromSlash(string(p.Name)))
}

func (p *Package) Rule(name string) (Rule, bool) {
	for _, r := range p.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

func (p *Package) addRule(r Rule) error {
	if r.Name == "" || strings.ContainsAny(r.Name, ":/") {
		return errors.Errorf("ValueError: Invalid value for 'name': '%s'", r.Name)
	}
	if _, found := p.Rule(r.Name); found {
		return errors.Errorf("Rule '%s' declared twice in package %s", r.Name, p.Name)
	}
	p.Rules = append(p.Rules, r)
	return nil
}

func (p *Package) builtins() starlark.StringDict {
	rule := func(
		kind string,
		parse func(r *Rule) []param,
	) *starlark.Builtin {
		return starlark.NewBuiltin(kind, func(
			_ *starlark.Thread,
			_ *starlark.Builtin,
			args starlark.Tuple,
			kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			if len(args) > 0 {
				return nil, WrongPosArgCountErr{Fn: kind, GivenPosArgs: len(args)}
			}
			r := Rule{Kind: kind}
			if err := parseArgs(kind, args, kwargs, parse(&r)...); err != nil {
				return nil, err
			}
			return starlark.None, p.addRule(r)
		})
	}

	return starlark.StringDict{
		"py_library": rule("py_library", func(r *Rule) []param {
			return []param{
				{"name", true, parseString(&r.Name)},
				{"srcs", false, parseSources(&r.Srcs)},
				{"data", false, parseSources(&r.Data)},
				{"deps", false, parseStringList(&r.Deps)},
				{"imports", false, parseStringList(&r.Imports)},
				{"visibility", false, parseStringList(&r.Visibility)},
			}
		}),
		"py_binary": rule("py_binary", func(r *Rule) []param {
			return []param{
				{"name", true, parseString(&r.Name)},
				{"srcs", true, parseSources(&r.Srcs)},
				{"data", false, parseSources(&r.Data)},
				{"deps", false, parseStringList(&r.Deps)},
				{"imports", false, parseStringList(&r.Imports)},
				{"visibility", false, parseStringList(&r.Visibility)},
				{"main", false, parseString(&r.Main)},
			}
		}),
		"filegroup": rule("filegroup", func(r *Rule) []param {
			return []param{
				{"name", true, parseString(&r.Name)},
				{"srcs", false, parseSources(&r.Srcs)},
				{"visibility", false, parseStringList(&r.Visibility)},
			}
		}),
		"exports_files": starlark.NewBuiltin("exports_files", func(
			_ *starlark.Thread,
			_ *starlark.Builtin,
			args starlark.Tuple,
			kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			var files, visibility []string
			if err := parseArgs(
				"exports_files",
				args,
				kwargs,
				param{"srcs", true, parseStringList(&files)},
				param{"visibility", false, parseStringList(&visibility)},
			); err != nil {
				return nil, err
			}
			p.Exports = append(p.Exports, files...)
			return starlark.None, nil
		}),
		"glob": starlark.NewBuiltin("glob", func(
			_ *starlark.Thread,
			_ *starlark.Builtin,
			args starlark.Tuple,
			kwargs []starlark.Tuple,
		) (starlark.Value, error) {
			g := Glob{Package: p.Name}
			if err := parseArgs(
				"glob",
				args,
				kwargs,
				param{"include", true, parseStringList(&g.Include)},
				param{"exclude", false, parseStringList(&g.Exclude)},
			); err != nil {
				return nil, err
			}
			return g, nil
		}),
	}
}

// Evaluate executes the BUILD file of package pkg under root.
func Evaluate(root string, pkg core.PackageName) (*Package, error) {
	p := &Package{Root: root, Name: pkg}
	buildFilePath := filepath.Join(p.Dir(), "BUILD")
	if _, err := starlark.ExecFile(
		&starlark.Thread{
			Name: string(pkg),
			Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
				return nil, errors.Errorf("Cannot load '%s': load() is not supported", module)
			},
		},
		buildFilePath,
		nil,
		p.builtins(),
	); err != nil {
		return nil, errors.Wrapf(err, "Evaluating %s", buildFilePath)
	}
	return p, nil
}

// Expand lists the files (relative to the package directory, slash
// separated) that srcs names. Explicit files are returned as written; globs
// are matched against regular files, skipping files that belong to a
// subpackage.
func (p *Package) Expand(srcs Sources) ([]string, error) {
	if srcs.Glob == nil {
		return srcs.Files, nil
	}

	dir, err := filepath.EvalSymlinks(p.Dir())
	if err != nil {
		return nil, errors.Wrapf(err, "Resolving package %s", p.Name)
	}
	matched := map[string]struct{}{}
	for _, pattern := range srcs.Glob.Include {
		matches, err := doublestar.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrapf(err, "Expanding '%s' in package %s", pattern, p.Name)
		}

	MATCHES:
		for _, match := range matches {
			if fi, err := os.Stat(match); err != nil || fi.IsDir() {
				continue
			}
			rel, err := filepath.Rel(dir, match)
			if err != nil {
				return nil, err
			}
			rel = filepath.ToSlash(rel)
			if p.inSubpackage(rel) {
				continue
			}
			for _, exclude := range srcs.Glob.Exclude {
				if ok, err := doublestar.Match(exclude, rel); err != nil {
					return nil, errors.Wrapf(err, "Matching '%s'", exclude)
				} else if ok {
					continue MATCHES
				}
			}
			matched[rel] = struct{}{}
		}
	}

	files := make([]string, 0, len(matched))
	for file := range matched {
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

// inSubpackage reports whether some directory between the package
// directory and rel holds its own BUILD file.
func (p *Package) inSubpackage(rel string) bool {
	if p.subpackages == nil {
		p.subpackages = map[string]bool{}
	}
	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		isPackage, found := p.subpackages[dir]
		if !found {
			fi, err := os.Stat(filepath.Join(p.Dir(), filepath.FromSlash(dir), "BUILD"))
			isPackage = err == nil && !fi.IsDir()
			p.subpackages[dir] = isPackage
		}
		if isPackage {
			return true
		}
	}
	return false
}
