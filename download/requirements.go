package download

import (
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var hashRE = regexp.MustCompile(`--hash=sha256:.+`)

// StripHashes writes a copy of the requirements file at path with every hash
// pin removed (to the end of its line) and returns the copy's path. The
// installer cannot check pins against a find-links directory, so offline
// lookups use the copy. The caller owns the copy and must remove it.
func StripHashes(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "Reading requirements file %s", path)
	}

	noHashPath := strings.TrimSuffix(path, ".txt") + "_no_hash.txt"
	if err := os.WriteFile(
		noHashPath,
		hashRE.ReplaceAll(data, nil),
		0644,
	); err != nil {
		return "", errors.Wrapf(err, "Writing requirements file %s", noHashPath)
	}
	return noHashPath, nil
}
