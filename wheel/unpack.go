package wheel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mholt/archiver"
	"github.com/pkg/errors"
	"github.com/weberc2/piprules/core"
	"github.com/weberc2/piprules/dist"
)

// DistributionNotFoundErr is returned when an unpacked wheel holds no
// distribution metadata.
type DistributionNotFoundErr struct {
	PackageDirectory string
}

func (err DistributionNotFoundErr) Error() string {
	return fmt.Sprintf(
		"Could not find a Python distribution in directory %s",
		err.PackageDirectory,
	)
}

// Unpacker extracts wheels. Requirements of the resulting distributions are
// filtered against Environment; a nil Environment keeps every requirement
// that is not tied to an extra.
type Unpacker struct {
	Environment *dist.Environment
}

// Unpack extracts wheelPath into destDir/<normalized name>/ and returns the
// distribution whose metadata matches the wheel's file name. Files left over
// from a previous extraction are overwritten.
func (u Unpacker) Unpack(wheelPath, destDir string) (dist.Distribution, error) {
	name, err := ParseName(filepath.Base(wheelPath))
	if err != nil {
		return nil, err
	}

	packageDir := filepath.Join(destDir, core.NormalizeName(name.Distribution))
	z := archiver.Zip{MkdirAll: true, OverwriteExisting: true}
	if err := z.Unarchive(wheelPath, packageDir); err != nil {
		return nil, errors.Wrapf(err, "Extracting %s", wheelPath)
	}

	dists, err := dist.FindAll(packageDir, u.Environment)
	if err != nil {
		return nil, errors.Wrapf(err, "Reading distribution in %s", packageDir)
	}
	d := selectDistribution(name, dists)
	if d == nil {
		return nil, DistributionNotFoundErr{packageDir}
	}
	return d, nil
}

// selectDistribution picks the distribution the wheel itself carries.
// Metadata left behind by an earlier version of the same project is ignored.
// A lone distribution is accepted even if its metadata disagrees with the
// file name.
func selectDistribution(name Name, dists []dist.Distribution) dist.Distribution {
	for _, d := range dists {
		if core.NormalizeName(d.ProjectName()) == core.NormalizeName(name.Distribution) &&
			escapeVersion(d.Version()) == escapeVersion(name.Version) {
			return d
		}
	}
	if len(dists) == 1 {
		return dists[0]
	}
	return nil
}

// escapeVersion applies the file name escaping of versions ('-' becomes '_').
func escapeVersion(version string) string {
	return strings.ReplaceAll(version, "-", "_")
}

// Unpack extracts a wheel with no marker environment.
func Unpack(wheelPath, destDir string) (dist.Distribution, error) {
	return Unpacker{}.Unpack(wheelPath, destDir)
}

// FindAll lists the wheel files directly under dir, sorted by name.
func FindAll(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "Listing wheels in %s", dir)
	}

	var wheels []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ".whl") {
			continue
		}
		wheels = append(wheels, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(wheels)
	return wheels, nil
}
