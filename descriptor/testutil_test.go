package descriptor

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/weberc2/piprules/core"
	"github.com/weberc2/piprules/dist"
)

// fakeDistribution is a dist.Distribution whose metadata is given directly.
type fakeDistribution struct {
	location string
	name     string
	requires []string
	scripts  map[string]string
}

func (d fakeDistribution) Location() string    { return d.location }
func (d fakeDistribution) ProjectName() string { return d.name }
func (d fakeDistribution) Version() string     { return "1.0" }

func (d fakeDistribution) Requires() []dist.Requirement {
	var reqs []dist.Requirement
	for _, s := range d.requires {
		r, err := dist.ParseRequirement(s)
		if err != nil {
			panic(err)
		}
		reqs = append(reqs, r)
	}
	return reqs
}

func (d fakeDistribution) EntryPoints(group string) []dist.EntryPoint {
	if group != dist.ConsoleScripts {
		return nil
	}
	var eps []dist.EntryPoint
	for name, target := range d.scripts {
		ep := dist.EntryPoint{Group: group, Name: name, Module: target}
		for i := range target {
			if target[i] == ':' {
				ep.Module, ep.Attr = target[:i], target[i+1:]
				break
			}
		}
		eps = append(eps, ep)
	}
	sort.Slice(eps, func(i, j int) bool { return eps[i].Name < eps[j].Name })
	return eps
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := os.WriteFile(p, []byte(contents), 0644); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return string(data)
}

func newGenerator() Generator {
	return Generator{
		ScriptMaker: TemplateScriptMaker{Python: "/usr/bin/python3"},
		Logger:      core.DiscardLogger(),
	}
}
