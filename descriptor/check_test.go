package descriptor

import (
	"path/filepath"
	"testing"
)

func generateAll(t *testing.T, root string, dists ...fakeDistribution) {
	t.Helper()
	g := newGenerator()
	for _, d := range dists {
		d.location = filepath.Join(root, d.location)
		writeFiles(t, d.location, map[string]string{d.location[len(root)+1:] + "/__init__.py": ""})
		if err := g.Generate(d); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
}

func TestCheckResolvedRepository(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, filepath.Join(root, "requests"), map[string]string{
		"requests-2.0.data/data/share/doc.txt": "doc",
	})
	generateAll(
		t,
		root,
		fakeDistribution{
			location: "requests",
			name:     "requests",
			requires: []string{"six", "Charset-Normalizer"},
			scripts:  map[string]string{"requests": "requests.cli:main"},
		},
		fakeDistribution{location: "six", name: "six"},
		fakeDistribution{location: "charset_normalizer", name: "charset-normalizer"},
	)

	problems, err := Check(root)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("Wanted no problems, got %v", problems)
	}
}

func TestCheckUnresolvedDependency(t *testing.T) {
	root := t.TempDir()
	generateAll(
		t,
		root,
		fakeDistribution{location: "foo", name: "foo", requires: []string{"bar"}},
	)

	problems, err := Check(root)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(problems) != 1 {
		t.Fatalf("Wanted 1 problem, got %v", problems)
	}
	if wanted := "//foo:foo: dependency //bar: no such package"; problems[0].String() != wanted {
		t.Fatalf("Wanted '%s', got '%s'", wanted, problems[0])
	}
}

func TestCheckMissingFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"pkg/BUILD": `
filegroup(name = "pkg", srcs = glob(["*"]))

py_binary(
    name = "tool",
    srcs = ["bin/tool.py"],
    deps = [":pkg", ":missing", "//other:thing"],
    main = "bin/tool.py",
)

exports_files(["gone.txt"])
`,
		"other/BUILD": `filegroup(name = "other")`,
	})

	problems, err := Check(root)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wanted := []string{
		"//pkg:tool: dependency //pkg:missing: no such rule",
		"//pkg:tool: dependency //other:thing: no such rule",
		"//pkg:tool: missing source bin/tool.py",
		"//pkg:tool: missing main bin/tool.py",
		"//pkg: missing exported file gone.txt",
	}
	if len(problems) != len(wanted) {
		t.Fatalf("Wanted %d problems, got %v", len(wanted), problems)
	}
	for i, problem := range problems {
		if problem.String() != wanted[i] {
			t.Fatalf("Wanted problem %d to be '%s', got '%s'", i, wanted[i], problem)
		}
	}
}

func TestCheckBrokenPackage(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"pkg/BUILD": "py_library(\n"})

	problems, err := Check(root)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(problems) != 1 || problems[0].Package != "pkg" {
		t.Fatalf("Wanted one problem for //pkg, got %v", problems)
	}
}
