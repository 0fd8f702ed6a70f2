package descriptor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/weberc2/piprules/core"
)

// Problem is something the build tool would reject in a generated package.
type Problem struct {
	Package core.PackageName
	Rule    string
	Message string
}

func (p Problem) String() string {
	if p.Rule == "" {
		return fmt.Sprintf("//%s: %s", p.Package, p.Message)
	}
	return fmt.Sprintf("//%s:%s: %s", p.Package, p.Rule, p.Message)
}

type checker struct {
	root     string
	packages map[core.PackageName]*Package
	errs     map[core.PackageName]error
	problems []Problem
}

func (c *checker) load(name core.PackageName) (*Package, error) {
	if p, found := c.packages[name]; found {
		return p, c.errs[name]
	}
	p, err := Evaluate(c.root, name)
	c.packages[name], c.errs[name] = p, err
	return p, err
}

func (c *checker) report(pkg core.PackageName, rule, format string, v ...interface{}) {
	c.problems = append(c.problems, Problem{
		Package: pkg,
		Rule:    rule,
		Message: fmt.Sprintf(format, v...),
	})
}

func (c *checker) exists(p *Package, file string) bool {
	fi, err := os.Stat(filepath.Join(p.Dir(), filepath.FromSlash(file)))
	return err == nil && !fi.IsDir()
}

func (c *checker) checkDep(p *Package, r Rule, dep string) {
	label, err := core.ParseLabel(p.Name, dep)
	if err != nil {
		c.report(p.Name, r.Name, "%v", err)
		return
	}
	if fi, err := os.Stat(filepath.Join(
		c.root,
		filepath.FromSlash(string(label.Package)),
		"BUILD",
	)); err != nil || fi.IsDir() {
		c.report(p.Name, r.Name, "dependency %s: no such package", label)
		return
	}
	target, err := c.load(label.Package)
	if err != nil {
		c.report(p.Name, r.Name, "dependency %s: %v", label, err)
		return
	}
	if _, found := target.Rule(string(label.Target)); !found {
		c.report(p.Name, r.Name, "dependency %s: no such rule", label)
	}
}

func (c *checker) checkPackage(name core.PackageName) {
	p, err := c.load(name)
	if err != nil {
		c.report(name, "", "%v", err)
		return
	}

	for _, r := range p.Rules {
		for _, dep := range r.Deps {
			c.checkDep(p, r, dep)
		}
		if r.Kind != "py_binary" {
			continue
		}
		srcs, err := p.Expand(r.Srcs)
		if err != nil {
			c.report(p.Name, r.Name, "%v", err)
			continue
		}
		if len(srcs) < 1 {
			c.report(p.Name, r.Name, "no sources")
		}
		for _, src := range srcs {
			if !c.exists(p, src) {
				c.report(p.Name, r.Name, "missing source %s", src)
			}
		}
		if r.Main != "" && !c.exists(p, r.Main) {
			c.report(p.Name, r.Name, "missing main %s", r.Main)
		}
	}

	for _, file := range p.Exports {
		if !c.exists(p, file) {
			c.report(p.Name, "", "missing exported file %s", file)
		}
	}
}

// Check evaluates every package below root and reports dependencies that do
// not resolve to a rule along with source and exported files that do not
// exist. Problems are ordered by package.
func Check(root string) ([]Problem, error) {
	var names []core.PackageName
	if err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "BUILD" {
			return nil
		}
		dir, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return err
		}
		if dir != "." {
			names = append(names, core.PackageName(filepath.ToSlash(dir)))
		}
		return nil
	}); err != nil {
		return nil, errors.Wrapf(err, "Finding packages in %s", root)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	c := checker{
		root:     root,
		packages: map[core.PackageName]*Package{},
		errs:     map[core.PackageName]error{},
	}
	for _, name := range names {
		c.checkPackage(name)
	}
	return c.problems, nil
}
