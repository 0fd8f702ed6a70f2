package wheel

import (
	"archive/zip"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeWheel writes a zip archive holding files (name => contents).
func writeWheel(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, contents := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, err := fw.Write([]byte(contents)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestUnpack(t *testing.T) {
	// Arrange
	tmp := t.TempDir()
	wheelPath := filepath.Join(tmp, "Foo.Bar-1.0-py3-none-any.whl")
	writeWheel(t, wheelPath, map[string]string{
		"foo_bar/__init__.py":               "",
		"Foo.Bar-1.0.dist-info/METADATA":    "Name: Foo.Bar\nVersion: 1.0\nRequires-Dist: six\n",
		"Foo.Bar-1.0.dist-info/RECORD":      "",
		"Foo.Bar-1.0.data/data/share/x.txt": "x",
	})
	dest := filepath.Join(tmp, "repo")

	// Act
	d, err := Unpack(wheelPath, dest)

	// Assert
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	wantedLocation := filepath.Join(dest, "foo_bar")
	if d.Location() != wantedLocation {
		t.Fatalf("Wanted location '%s', got '%s'", wantedLocation, d.Location())
	}
	if d.ProjectName() != "Foo.Bar" || d.Version() != "1.0" {
		t.Fatalf("Wanted Foo.Bar 1.0, got %s %s", d.ProjectName(), d.Version())
	}
	if reqs := d.Requires(); len(reqs) != 1 || reqs[0].Name != "six" {
		t.Fatalf("Wanted [six], got %v", reqs)
	}
	for _, p := range []string{
		"foo_bar/__init__.py",
		"Foo.Bar-1.0.data/data/share/x.txt",
	} {
		if _, err := os.Stat(filepath.Join(wantedLocation, p)); err != nil {
			t.Fatalf("Wanted '%s' to be extracted: %v", p, err)
		}
	}
}

func TestUnpackTwice(t *testing.T) {
	tmp := t.TempDir()
	wheelPath := filepath.Join(tmp, "foo-1.0-py3-none-any.whl")
	writeWheel(t, wheelPath, map[string]string{
		"foo/__init__.py":            "",
		"foo-1.0.dist-info/METADATA": "Name: foo\nVersion: 1.0\n",
	})
	dest := filepath.Join(tmp, "repo")

	if _, err := Unpack(wheelPath, dest); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := Unpack(wheelPath, dest); err != nil {
		t.Fatalf("Wanted second unpack to overwrite, got %v", err)
	}
}

func TestUnpackNewerVersion(t *testing.T) {
	// Arrange
	tmp := t.TempDir()
	oldWheel := filepath.Join(tmp, "foo-1.0-py3-none-any.whl")
	writeWheel(t, oldWheel, map[string]string{
		"foo/__init__.py":            "",
		"foo-1.0.dist-info/METADATA": "Name: foo\nVersion: 1.0\nRequires-Dist: six\n",
	})
	newWheel := filepath.Join(tmp, "foo-2.0-py3-none-any.whl")
	writeWheel(t, newWheel, map[string]string{
		"foo/__init__.py":            "",
		"foo-2.0.dist-info/METADATA": "Name: foo\nVersion: 2.0\nRequires-Dist: attrs\n",
	})
	dest := filepath.Join(tmp, "repo")
	if _, err := Unpack(oldWheel, dest); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Act
	d, err := Unpack(newWheel, dest)

	// Assert
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d.Version() != "2.0" {
		t.Fatalf("Wanted version 2.0, got %s", d.Version())
	}
	if reqs := d.Requires(); len(reqs) != 1 || reqs[0].Name != "attrs" {
		t.Fatalf("Wanted [attrs], got %v", reqs)
	}
}

func TestUnpackAmbiguousMetadata(t *testing.T) {
	tmp := t.TempDir()
	wheelPath := filepath.Join(tmp, "foo-3.0-py3-none-any.whl")
	writeWheel(t, wheelPath, map[string]string{
		"bar-1.0.dist-info/METADATA": "Name: bar\nVersion: 1.0\n",
		"baz-1.0.dist-info/METADATA": "Name: baz\nVersion: 1.0\n",
	})

	_, err := Unpack(wheelPath, filepath.Join(tmp, "repo"))
	if _, ok := err.(DistributionNotFoundErr); !ok {
		t.Fatalf("Wanted DistributionNotFoundErr, got %v", err)
	}
}

func TestUnpackDistributionNotFound(t *testing.T) {
	tmp := t.TempDir()
	wheelPath := filepath.Join(tmp, "bogus-1.0-py3-none-any.whl")
	writeWheel(t, wheelPath, map[string]string{"bogus/__init__.py": ""})

	_, err := Unpack(wheelPath, filepath.Join(tmp, "repo"))
	notFound, ok := err.(DistributionNotFoundErr)
	if !ok {
		t.Fatalf("Wanted DistributionNotFoundErr, got %v", err)
	}
	if wanted := filepath.Join(tmp, "repo", "bogus"); notFound.PackageDirectory != wanted {
		t.Fatalf("Wanted package directory '%s', got '%s'", wanted, notFound.PackageDirectory)
	}
}

func TestFindAll(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"b-1.0-py3-none-any.whl",
		"a-1.0-py3-none-any.whl",
		"c-1.0.tar.gz",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d-1.0-py3-none-any.whl"), 0755); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wanted := []string{
		filepath.Join(dir, "a-1.0-py3-none-any.whl"),
		filepath.Join(dir, "b-1.0-py3-none-any.whl"),
	}
	for i := 0; i < 2; i++ {
		wheels, err := FindAll(dir)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !reflect.DeepEqual(wheels, wanted) {
			t.Fatalf("Wanted %v, got %v", wanted, wheels)
		}
	}
}
