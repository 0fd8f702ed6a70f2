package dist

import (
	"bufio"
	"io"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DistInfo is a distribution described by a `<name>-<version>.dist-info`
// directory, the layout produced both by `pip install` and by unpacking a
// wheel.
type DistInfo struct {
	location    string
	metadataDir string
	name        string
	version     string
	requires    []Requirement
	entryPoints entryMap
}

func (d *DistInfo) Location() string                      { return d.location }
func (d *DistInfo) MetadataDir() string                   { return d.metadataDir }
func (d *DistInfo) ProjectName() string                   { return d.name }
func (d *DistInfo) Version() string                       { return d.version }
func (d *DistInfo) Requires() []Requirement               { return append([]Requirement(nil), d.requires...) }
func (d *DistInfo) EntryPoints(group string) []EntryPoint { return d.entryPoints.group(group) }

// ReadDistInfo reads the dist-info directory metadataDir, which lives
// directly under location. Requirements whose markers do not hold in env are
// dropped.
func ReadDistInfo(location, metadataDir string, env *Environment) (*DistInfo, error) {
	header, err := readHeaderFile(filepath.Join(metadataDir, "METADATA"))
	if err != nil {
		return nil, errors.Wrapf(err, "Reading metadata of %s", metadataDir)
	}

	d := &DistInfo{
		location:    location,
		metadataDir: metadataDir,
		name:        header.Get("Name"),
		version:     header.Get("Version"),
	}
	if d.name == "" || d.version == "" {
		name, version := splitMetadataDirName(filepath.Base(metadataDir))
		if d.name == "" {
			d.name = name
		}
		if d.version == "" {
			d.version = version
		}
	}

	for _, value := range header["Requires-Dist"] {
		req, err := ParseRequirement(value)
		if err != nil {
			return nil, errors.Wrapf(err, "Reading metadata of %s", metadataDir)
		}
		if req.AppliesTo(env) {
			d.requires = append(d.requires, req)
		}
	}

	if d.entryPoints, err = readEntryPointsFile(
		filepath.Join(metadataDir, "entry_points.txt"),
	); err != nil {
		return nil, errors.Wrapf(err, "Reading entry points of %s", metadataDir)
	}
	return d, nil
}

// readHeaderFile reads the RFC 822 style header block of a METADATA or
// PKG-INFO file.
func readHeaderFile(filePath string) (textproto.MIMEHeader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	header, err := textproto.NewReader(bufio.NewReader(file)).ReadMIMEHeader()
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "Parsing %s", filePath)
	}
	return header, nil
}

func readEntryPointsFile(filePath string) (entryMap, error) {
	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return entryMap{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseEntryPoints(file)
}

// splitMetadataDirName splits `foo_bar-1.0.dist-info` into its project name
// and version.
func splitMetadataDirName(base string) (string, string) {
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".dist-info"), ".egg-info")
	i := strings.Index(base, "-")
	if i < 0 {
		return base, ""
	}
	version := base[i+1:]
	// egg-info directories may carry a python tag: foo-1.0-py3.8.egg-info
	if j := strings.Index(version, "-py"); j >= 0 {
		version = version[:j]
	}
	return base[:i], version
}
