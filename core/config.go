package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the explicit configuration handed to every stage of the
// pipeline. Nothing reads the process environment or working directory
// behind its back.
type Config struct {
	// Python is the interpreter used to run the installer.
	Python string `toml:"python"`

	// PythonPath entries are prepended to PYTHONPATH for every installer
	// subprocess so that pip, setuptools and wheel are importable.
	PythonPath []string `toml:"python_path"`

	// CacheDir is the flat wheel cache. Empty disables caching.
	CacheDir string `toml:"cache_dir"`

	// BuildDir is scratch space for the installer.
	BuildDir string `toml:"build_dir"`

	// DestDir receives the wheels produced by the installer.
	DestDir string `toml:"dest_dir"`

	// RepoDir receives one package per unpacked distribution.
	RepoDir string `toml:"repo_dir"`

	// Requirements is the (possibly hash-pinned) requirements file.
	Requirements string `toml:"requirements"`

	// ExtraArgs are appended to the online installer invocation.
	ExtraArgs []string `toml:"extra_args"`

	// Jobs bounds how many distributions are described at once.
	Jobs int `toml:"jobs"`

	// NativeScripts writes console scripts from a built-in template instead
	// of asking the installer to generate them.
	NativeScripts bool `toml:"native_scripts"`

	// DetectEnvironment asks the interpreter for its PEP 508 marker
	// environment before reading requirements.
	DetectEnvironment bool `toml:"detect_environment"`
}

func DefaultConfig() Config {
	return Config{
		Python:            "python3",
		Jobs:              1,
		DetectEnvironment: true,
	}
}

// LoadConfig overlays the TOML file at filePath onto the defaults.
func LoadConfig(filePath string) (Config, error) {
	config := DefaultConfig()
	if filePath == "" {
		return config, nil
	}
	if _, err := toml.DecodeFile(filePath, &config); err != nil {
		return Config{}, errors.Wrapf(err, "Decoding config file %s", filePath)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	if c.Python == "" {
		return errors.New("Config: 'python' must not be empty")
	}
	if c.Jobs < 1 {
		return errors.Errorf("Config: 'jobs' must be at least 1; got %d", c.Jobs)
	}
	return nil
}

// ExpandUser replaces a leading '~' with the current user's home directory.
func ExpandUser(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrapf(err, "Expanding %s", p)
	}
	return filepath.Join(home, p[1:]), nil
}
