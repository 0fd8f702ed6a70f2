// Package descriptor writes BUILD files describing Python distributions and
// reads them back for verification.
package descriptor

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/weberc2/piprules/core"
	"github.com/weberc2/piprules/dist"
)

// LibraryDependency is a dependency on the library package generated for
// another distribution.
type LibraryDependency struct {
	Name string
}

func NewLibraryDependency(r dist.Requirement) LibraryDependency {
	return LibraryDependency{Name: core.NormalizeName(r.Name)}
}

func (dep LibraryDependency) Label() string {
	return core.LibraryLabel(dep.Name).String()
}

// libraryDependencies returns the sorted labels of every distinct dependency
// of d.
func libraryDependencies(d dist.Distribution) []string {
	set := map[LibraryDependency]struct{}{}
	for _, r := range d.Requires() {
		set[NewLibraryDependency(r)] = struct{}{}
	}

	labels := make([]string, 0, len(set))
	for dep := range set {
		labels = append(labels, dep.Label())
	}
	sort.Strings(labels)
	return labels
}

// Generator writes the BUILD files for a distribution into its location.
type Generator struct {
	ScriptMaker ScriptMaker
	Logger      *log.Logger
}

// Generate writes the library package for d, a package for each of its data
// directories, and a binary rule for each console script. An existing BUILD
// file at the distribution root is overwritten.
func (g Generator) Generate(d dist.Distribution) error {
	libraryName := core.NormalizeName(d.ProjectName())
	buildFilePath := filepath.Join(d.Location(), "BUILD")

	if err := os.WriteFile(
		buildFilePath,
		[]byte(libraryRule(libraryName, libraryDependencies(d))),
		0644,
	); err != nil {
		return errors.Wrapf(err, "Writing %s", buildFilePath)
	}
	g.Logger.Debug("wrote library package", "library", libraryName)

	dataDirs, err := findDataDirectories(d.Location())
	if err != nil {
		return err
	}
	for _, dataDir := range dataDirs {
		if err := generateDataPackage(d.Location(), dataDir); err != nil {
			return errors.Wrapf(err, "Generating data package for %s", dataDir)
		}
		g.Logger.Debug(
			"wrote data package",
			"library", libraryName,
			"package", filepath.Base(dataDir),
		)
	}

	entryPoints := d.EntryPoints(dist.ConsoleScripts)
	if len(entryPoints) < 1 {
		return nil
	}
	if err := g.generateScripts(d.Location(), entryPoints); err != nil {
		return errors.Wrapf(err, "Generating console scripts for %s", libraryName)
	}

	var contents strings.Builder
	for _, ep := range entryPoints {
		contents.WriteString(binaryRule(libraryName, ep.Name))
	}
	f, err := os.OpenFile(buildFilePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "Opening %s", buildFilePath)
	}
	defer f.Close()
	if _, err := f.WriteString(contents.String()); err != nil {
		return errors.Wrapf(err, "Appending binaries to %s", buildFilePath)
	}
	g.Logger.Debug("wrote binaries", "library", libraryName, "count", len(entryPoints))
	return f.Close()
}

// generateScripts writes one script per entry point into location/bin, each
// carrying a .py suffix as py_binary requires.
func (g Generator) generateScripts(location string, eps []dist.EntryPoint) error {
	binDir := filepath.Join(location, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return errors.Wrapf(err, "Creating %s", binDir)
	}
	if err := g.ScriptMaker.MakeScripts(binDir, eps); err != nil {
		return err
	}

	entries, err := os.ReadDir(binDir)
	if err != nil {
		return errors.Wrapf(err, "Listing %s", binDir)
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".py") {
			continue
		}
		script := filepath.Join(binDir, entry.Name())
		if err := os.Rename(script, script+".py"); err != nil {
			return errors.Wrapf(err, "Renaming %s", script)
		}
	}
	return nil
}
