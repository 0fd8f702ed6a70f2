package dist

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Find when a directory holds no distribution
// metadata.
var ErrNotFound = errors.New("No distribution metadata found")

// Find returns the first distribution (by metadata directory name) installed
// directly under dir.
func Find(dir string, env *Environment) (Distribution, error) {
	dists, err := FindAll(dir, env)
	if err != nil {
		return nil, err
	}
	if len(dists) < 1 {
		return nil, ErrNotFound
	}
	return dists[0], nil
}

// FindAll returns every distribution installed directly under dir, ordered
// by metadata directory name.
func FindAll(dir string, env *Environment) ([]Distribution, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "Listing %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var dists []Distribution
	for _, name := range names {
		metadataPath := filepath.Join(dir, name)
		switch {
		case strings.HasSuffix(name, ".dist-info"):
			d, err := ReadDistInfo(dir, metadataPath, env)
			if err != nil {
				return nil, err
			}
			dists = append(dists, d)
		case strings.HasSuffix(name, ".egg-info"):
			d, err := ReadEggInfo(dir, metadataPath, env)
			if err != nil {
				return nil, err
			}
			dists = append(dists, d)
		}
	}
	return dists, nil
}
