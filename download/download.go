// Package download fills a destination directory with the wheels named by a
// requirements file, preferring a local wheel cache over the network.
package download

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/weberc2/piprules/buildutil"
	"github.com/weberc2/piprules/core"
)

type CacheStatus int

const (
	CacheUnsatisfied CacheStatus = iota
	CacheSatisfied
)

func (s CacheStatus) String() string {
	if s == CacheSatisfied {
		return "satisfied"
	}
	return "unsatisfied"
}

// InstallerFailedErr is returned when the online installer exits non-zero.
// Callers should exit with the same code.
type InstallerFailedErr struct {
	ExitCode int
}

func (err *InstallerFailedErr) Error() string {
	return fmt.Sprintf("Installer exited with status %d", err.ExitCode)
}

// Reconciler reconciles the wheel cache (Config.CacheDir) with the
// destination directory (Config.DestDir) for the requirements file
// Config.Requirements.
type Reconciler struct {
	Config core.Config
	Runner buildutil.Runner
	Logger *log.Logger
}

func (r Reconciler) environ() []string {
	return buildutil.PrependEnv(os.Environ(), "PYTHONPATH", r.Config.PythonPath...)
}

func (r Reconciler) cacheDir() (string, error) {
	return core.ExpandUser(r.Config.CacheDir)
}

// CheckOfflineCache asks the installer to satisfy every requirement from the
// cache alone, writing the wheels to the destination directory. A non-zero
// installer exit means the cache is missing something; errors are reserved
// for failures to run the installer at all.
func (r Reconciler) CheckOfflineCache() (CacheStatus, error) {
	cacheDir, err := r.cacheDir()
	if err != nil {
		return CacheUnsatisfied, err
	}

	noHashPath, err := StripHashes(r.Config.Requirements)
	if err != nil {
		return CacheUnsatisfied, err
	}
	defer os.Remove(noHashPath)

	cmd := buildutil.Command{
		Argv: []string{
			r.Config.Python, "-m", "pip",
			"wheel",
			"--no-index",
			"--find-links", cacheDir,
			"-w", r.Config.DestDir,
			"-r", noHashPath,
		},
		Env: r.environ(),
	}
	r.Logger.Debug("checking offline cache", "command", cmd)
	code, err := r.Runner.Run(cmd)
	if err != nil {
		return CacheUnsatisfied, errors.Wrap(err, "Checking offline cache")
	}
	if code != 0 {
		r.Logger.Warn("offline cache incomplete", "cache", cacheDir, "exit", code)
		return CacheUnsatisfied, nil
	}
	return CacheSatisfied, nil
}

// Download makes every requirement available as a wheel in the destination
// directory. When a cache is configured it is tried first; wheels fetched
// from the network are then linked back into it.
func (r Reconciler) Download() error {
	status := CacheUnsatisfied
	if r.Config.CacheDir != "" {
		var err error
		if status, err = r.CheckOfflineCache(); err != nil {
			return err
		}
	}
	if status == CacheSatisfied {
		r.Logger.Info("requirements satisfied from cache", "cache", r.Config.CacheDir)
		return nil
	}

	environ := r.environ()
	if r.Config.BuildDir != "" {
		if err := os.MkdirAll(r.Config.BuildDir, 0755); err != nil {
			return errors.Wrapf(err, "Creating build directory %s", r.Config.BuildDir)
		}
		environ = buildutil.SetEnv(environ, "TMPDIR", r.Config.BuildDir)
	}

	cmd := buildutil.Command{
		Argv: append(
			[]string{
				r.Config.Python, "-m", "pip",
				"wheel",
				"-w", r.Config.DestDir,
				"-r", r.Config.Requirements,
			},
			r.Config.ExtraArgs...,
		),
		Env: environ,
	}
	r.Logger.Info("downloading requirements", "requirements", r.Config.Requirements)
	r.Logger.Debug("running installer", "command", cmd)
	code, err := r.Runner.Run(cmd)
	if err != nil {
		return errors.Wrap(err, "Downloading requirements")
	}
	if code != 0 {
		return &InstallerFailedErr{ExitCode: code}
	}

	if r.Config.CacheDir != "" {
		cacheDir, err := r.cacheDir()
		if err != nil {
			return err
		}
		if err := HardlinkCache(cacheDir, r.Config.DestDir); err != nil {
			return errors.Wrap(err, "Populating wheel cache")
		}
		r.Logger.Debug("populated wheel cache", "cache", cacheDir)
	}
	return nil
}
