package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
	"github.com/pkg/errors"
)

// DuplicateDataPackageErr is returned when a data directory's package name
// is already taken under the distribution root.
type DuplicateDataPackageErr struct {
	Name     string
	Existing string
}

func (err DuplicateDataPackageErr) Error() string {
	return fmt.Sprintf(
		"Data package '%s' conflicts with existing %s",
		err.Name,
		err.Existing,
	)
}

// findDataDirectories returns the directories matching
// <location>/*.data/*, sorted.
func findDataDirectories(location string) ([]string, error) {
	matches, err := doublestar.Glob(filepath.Join(location, "*.data", "*"))
	if err != nil {
		return nil, errors.Wrapf(err, "Finding data directories in %s", location)
	}

	var dirs []string
	for _, match := range matches {
		if fi, err := os.Stat(match); err == nil && fi.IsDir() {
			dirs = append(dirs, match)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// generateDataPackage links dataDir into location under its basename and
// writes a BUILD file into every directory of the linked tree. A link left
// by an earlier run is reused if it points at the same directory.
func generateDataPackage(location, dataDir string) error {
	name := filepath.Base(dataDir)
	linkPath := filepath.Join(location, name)
	target, err := filepath.Rel(location, dataDir)
	if err != nil {
		return errors.Wrapf(err, "Relativizing %s", dataDir)
	}

	if fi, err := os.Lstat(linkPath); err == nil {
		existing := linkPath
		if fi.Mode()&os.ModeSymlink != 0 {
			dest, err := os.Readlink(linkPath)
			if err != nil {
				return errors.Wrapf(err, "Reading link %s", linkPath)
			}
			if dest == target {
				return writeDataBuildFiles(linkPath)
			}
			existing = fmt.Sprintf("%s -> %s", linkPath, dest)
		}
		return DuplicateDataPackageErr{Name: name, Existing: existing}
	}

	if err := os.Symlink(target, linkPath); err != nil {
		return errors.Wrapf(err, "Linking %s", linkPath)
	}
	return writeDataBuildFiles(linkPath)
}

// writeDataBuildFiles writes a BUILD file into dir and each directory below
// it. Directories holding no files get an empty BUILD file. Symlinks to
// directories are neither descended into nor exported.
func writeDataBuildFiles(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "Listing %s", dir)
	}

	var files, subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir():
			subdirs = append(subdirs, filepath.Join(dir, name))
		case name == "BUILD":
		case entry.Type()&os.ModeSymlink != 0:
			if fi, err := os.Stat(filepath.Join(dir, name)); err == nil && fi.IsDir() {
				continue
			}
			files = append(files, name)
		default:
			files = append(files, name)
		}
	}

	contents := ""
	if len(files) > 0 {
		contents = filegroupRule(filepath.Base(dir), files)
	}
	buildFilePath := filepath.Join(dir, "BUILD")
	if err := os.WriteFile(buildFilePath, []byte(contents), 0644); err != nil {
		return errors.Wrapf(err, "Writing %s", buildFilePath)
	}

	for _, subdir := range subdirs {
		if err := writeDataBuildFiles(subdir); err != nil {
			return err
		}
	}
	return nil
}
