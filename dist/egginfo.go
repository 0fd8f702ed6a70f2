package dist

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// EggInfo is a distribution described by an `.egg-info` directory (or, for
// very old installs, a single `.egg-info` file holding PKG-INFO).
type EggInfo struct {
	location    string
	metadataDir string
	name        string
	version     string
	requires    []Requirement
	entryPoints entryMap
}

func (d *EggInfo) Location() string                      { return d.location }
func (d *EggInfo) MetadataDir() string                   { return d.metadataDir }
func (d *EggInfo) ProjectName() string                   { return d.name }
func (d *EggInfo) Version() string                       { return d.version }
func (d *EggInfo) Requires() []Requirement               { return append([]Requirement(nil), d.requires...) }
func (d *EggInfo) EntryPoints(group string) []EntryPoint { return d.entryPoints.group(group) }

func ReadEggInfo(location, metadataPath string, env *Environment) (*EggInfo, error) {
	info, err := os.Stat(metadataPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Reading egg-info %s", metadataPath)
	}

	pkgInfo := metadataPath
	if info.IsDir() {
		pkgInfo = filepath.Join(metadataPath, "PKG-INFO")
	}
	header, err := readHeaderFile(pkgInfo)
	if err != nil {
		return nil, errors.Wrapf(err, "Reading metadata of %s", metadataPath)
	}

	d := &EggInfo{
		location:    location,
		metadataDir: metadataPath,
		name:        header.Get("Name"),
		version:     header.Get("Version"),
		entryPoints: entryMap{},
	}
	if d.name == "" || d.version == "" {
		name, version := splitMetadataDirName(filepath.Base(metadataPath))
		if d.name == "" {
			d.name = name
		}
		if d.version == "" {
			d.version = version
		}
	}
	if !info.IsDir() {
		return d, nil
	}

	if d.requires, err = readRequiresFile(
		filepath.Join(metadataPath, "requires.txt"),
		env,
	); err != nil {
		return nil, errors.Wrapf(err, "Reading requirements of %s", metadataPath)
	}
	if d.entryPoints, err = readEntryPointsFile(
		filepath.Join(metadataPath, "entry_points.txt"),
	); err != nil {
		return nil, errors.Wrapf(err, "Reading entry points of %s", metadataPath)
	}
	return d, nil
}

// readRequiresFile reads a setuptools requires.txt. Requirements under an
// `[extra]` or `[extra:marker]` section are skipped; those under a
// `[:marker]` section are kept only if the marker holds in env.
func readRequiresFile(filePath string, env *Environment) ([]Requirement, error) {
	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		requires []Requirement
		marker   *Marker
		skip     bool
	)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section := line[1 : len(line)-1]
			extra, markerText := section, ""
			if i := strings.Index(section, ":"); i >= 0 {
				extra, markerText = section[:i], section[i+1:]
			}
			marker, skip = nil, strings.TrimSpace(extra) != ""
			if !skip && strings.TrimSpace(markerText) != "" {
				if marker, err = ParseMarker(markerText); err != nil {
					return nil, err
				}
			}
			continue
		}
		if skip {
			continue
		}

		req, err := ParseRequirement(line)
		if err != nil {
			return nil, err
		}
		if req.Marker == nil {
			req.Marker = marker
		}
		if req.AppliesTo(env) && (marker == nil || marker.Evaluate(env)) {
			requires = append(requires, req)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "Reading %s", filePath)
	}
	return requires, nil
}
