package download

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/weberc2/piprules/core"
)

// HardlinkCache links every wheel file in destDir into cacheDir, creating
// cacheDir if necessary. Wheels already present in the cache are left alone,
// so concurrent or repeated runs are harmless.
func HardlinkCache(cacheDir, destDir string) error {
	cacheDir, err := core.ExpandUser(cacheDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return errors.Wrapf(err, "Creating cache directory %s", cacheDir)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return errors.Wrapf(err, "Listing %s", destDir)
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".whl") {
			continue
		}
		src := filepath.Join(destDir, entry.Name())
		fi, err := os.Stat(src)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "Inspecting %s", src)
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		if err := os.Link(
			src,
			filepath.Join(cacheDir, entry.Name()),
		); err != nil && !os.IsExist(err) {
			return errors.Wrapf(err, "Linking %s into cache", src)
		}
	}
	return nil
}
