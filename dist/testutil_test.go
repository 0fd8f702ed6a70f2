package dist

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates files (relative path => contents) under root.
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

func requirementNames(reqs []Requirement) []string {
	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = r.Name
	}
	return names
}
