package buildutil

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Command describes one subprocess invocation.
type Command struct {
	Argv   []string
	Env    []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string { return strings.Join(c.Argv, " ") }

// Runner runs a command to completion and reports its exit code. A non-nil
// error means the command could not be run at all; a command that ran and
// failed reports a non-zero exit code and a nil error.
type Runner interface {
	Run(cmd Command) (int, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(cmd Command) (int, error)

func (f RunnerFunc) Run(cmd Command) (int, error) { return f(cmd) }

// ExecRunner runs commands as real subprocesses. Commands without their own
// Stdout/Stderr inherit the runner's.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (r ExecRunner) Run(c Command) (int, error) {
	if len(c.Argv) == 0 {
		return -1, errors.New("Running command: empty argv")
	}

	cmd := exec.Command(c.Argv[0], c.Argv[1:]...)
	cmd.Stdout = r.Stdout
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	cmd.Stderr = r.Stderr
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, errors.Wrapf(err, "Running '%s'", c)
	}
	return 0, nil
}

// PrependEnv returns environ with value prepended to the list variable key
// (e.g. PATH or PYTHONPATH), creating the variable if it is absent.
func PrependEnv(environ []string, key string, values ...string) []string {
	if len(values) == 0 {
		return environ
	}
	value := strings.Join(values, ":")
	out := make([]string, len(environ))
	copy(out, environ)
	for i, entry := range out {
		if strings.HasPrefix(entry, key+"=") {
			if old := entry[len(key+"="):]; old != "" {
				out[i] = fmt.Sprintf("%s=%s:%s", key, value, old)
			} else {
				out[i] = fmt.Sprintf("%s=%s", key, value)
			}
			return out
		}
	}
	return append(out, key+"="+value)
}

// SetEnv returns environ with key set to value, replacing any existing entry.
func SetEnv(environ []string, key, value string) []string {
	out := make([]string, 0, len(environ)+1)
	for _, entry := range environ {
		if !strings.HasPrefix(entry, key+"=") {
			out = append(out, entry)
		}
	}
	return append(out, key+"="+value)
}
