package dist

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseEntryPoints(t *testing.T) {
	input := `
# comment
[console_scripts]
pip = pip._internal.cli.main:main
pip3=pip._internal.cli.main:main

; another comment
[gui_scripts]
app = app.gui:run [gui, extra]

[foo.plugins]
bar = bar
`
	m, err := parseEntryPoints(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wanted := entryMap{
		"console_scripts": {
			{Group: "console_scripts", Name: "pip", Module: "pip._internal.cli.main", Attr: "main"},
			{Group: "console_scripts", Name: "pip3", Module: "pip._internal.cli.main", Attr: "main"},
		},
		"gui_scripts": {
			{
				Group:  "gui_scripts",
				Name:   "app",
				Module: "app.gui",
				Attr:   "run",
				Extras: []string{"gui", "extra"},
			},
		},
		"foo.plugins": {{Group: "foo.plugins", Name: "bar", Module: "bar"}},
	}
	if !reflect.DeepEqual(m, wanted) {
		t.Fatalf("Wanted %#v, got %#v", wanted, m)
	}
}

func TestParseEntryPointsInvalid(t *testing.T) {
	for _, input := range []string{
		"foo = bar:baz",
		"[console_scripts\nfoo = bar",
		"[console_scripts]\nfoo",
		"[console_scripts]\n= bar",
		"[console_scripts]\nfoo = bar [baz",
	} {
		if _, err := parseEntryPoints(strings.NewReader(input)); err == nil {
			t.Fatalf("Wanted error for %q, got nil", input)
		}
	}
}

func TestEntryPointsGroupSorted(t *testing.T) {
	m := entryMap{
		"console_scripts": {
			{Name: "zeta", Module: "z"},
			{Name: "alpha", Module: "a"},
		},
	}
	eps := m.group("console_scripts")
	if eps[0].Name != "alpha" || eps[1].Name != "zeta" {
		t.Fatalf("Wanted entry points sorted by name, got %v", eps)
	}
	if m["console_scripts"][0].Name != "zeta" {
		t.Fatal("Wanted group() to leave the underlying slice untouched")
	}
	if got := m.group("missing"); len(got) != 0 {
		t.Fatalf("Wanted no entry points, got %v", got)
	}
}

func TestEntryPointSpec(t *testing.T) {
	ep := EntryPoint{Name: "app", Module: "app.gui", Attr: "run", Extras: []string{"gui"}}
	if wanted := "app = app.gui:run [gui]"; ep.Spec() != wanted {
		t.Fatalf("Wanted '%s', got '%s'", wanted, ep.Spec())
	}
}

func TestParseEntryPointsDuplicateName(t *testing.T) {
	input := "[console_scripts]\nfoo = foo.cli:main\nfoo = foo.other:main\n"
	_, err := parseEntryPoints(strings.NewReader(input))
	invalid, ok := err.(InvalidEntryPointErr)
	if !ok {
		t.Fatalf("Wanted InvalidEntryPointErr, got %v", err)
	}
	if invalid.Line != 3 {
		t.Fatalf("Wanted the error on line 3, got line %d", invalid.Line)
	}

	// The same name in different groups is fine.
	input = "[console_scripts]\nfoo = foo.cli:main\n[gui_scripts]\nfoo = foo.gui:main\n"
	if _, err := parseEntryPoints(strings.NewReader(input)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}
