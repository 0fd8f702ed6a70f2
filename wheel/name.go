// Package wheel unpacks wheel archives into per-distribution directories.
package wheel

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Name holds the fields embedded in a wheel filename:
// {distribution}-{version}(-{build tag})?-{python tag}-{abi tag}-{platform tag}.whl
type Name struct {
	Distribution string
	Version      string
	BuildNum     int
	BuildTag     string
	PythonTag    string
	ABITag       string
	PlatformTag  string
}

type InvalidNameErr struct {
	FileName string
	Reason   string
}

func (err InvalidNameErr) Error() string {
	return "Invalid wheel filename '" + err.FileName + "': " + err.Reason
}

// ParseName parses the base name of a wheel file.
func ParseName(fileName string) (Name, error) {
	if !strings.HasSuffix(fileName, ".whl") {
		return Name{}, InvalidNameErr{fileName, "missing .whl suffix"}
	}
	parts := strings.Split(strings.TrimSuffix(fileName, ".whl"), "-")
	if len(parts) != 5 && len(parts) != 6 {
		return Name{}, InvalidNameErr{
			fileName,
			"has " + strconv.Itoa(len(parts)) + " elements, not 5 or 6",
		}
	}
	for _, part := range parts {
		if part == "" {
			return Name{}, InvalidNameErr{fileName, "empty element"}
		}
	}

	n := Name{
		Distribution: parts[0],
		Version:      parts[1],
		PythonTag:    parts[len(parts)-3],
		ABITag:       parts[len(parts)-2],
		PlatformTag:  parts[len(parts)-1],
	}
	if len(parts) == 6 {
		buildTag := parts[2]
		split := strings.IndexFunc(buildTag, func(r rune) bool {
			return !unicode.IsDigit(r)
		})
		if split == 0 {
			return Name{}, InvalidNameErr{fileName, "build tag must start with a digit"}
		} else if split == -1 {
			split = len(buildTag)
		}
		num, err := strconv.Atoi(buildTag[:split])
		if err != nil {
			return Name{}, errors.Wrapf(err, "Parsing build tag of %s", fileName)
		}
		n.BuildNum, n.BuildTag = num, buildTag[split:]
	}
	return n, nil
}
