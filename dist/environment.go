package dist

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/weberc2/piprules/buildutil"
)

// Environment holds the PEP 508 marker variables of a target interpreter.
type Environment struct {
	OSName                       string `json:"os_name"`
	SysPlatform                  string `json:"sys_platform"`
	PlatformMachine              string `json:"platform_machine"`
	PlatformPythonImplementation string `json:"platform_python_implementation"`
	PlatformRelease              string `json:"platform_release"`
	PlatformSystem               string `json:"platform_system"`
	PlatformVersion              string `json:"platform_version"`
	PythonVersion                string `json:"python_version"`
	PythonFullVersion            string `json:"python_full_version"`
	ImplementationName           string `json:"implementation_name"`
	ImplementationVersion        string `json:"implementation_version"`

	// Extra is the extra being evaluated; empty when none is requested.
	Extra string `json:"-"`
}

func isMarkerVariable(name string) bool {
	switch name {
	case "os_name", "sys_platform", "platform_machine",
		"platform_python_implementation", "platform_release",
		"platform_system", "platform_version", "python_version",
		"python_full_version", "implementation_name",
		"implementation_version", "extra":
		return true
	}
	return false
}

func (env *Environment) lookup(name string) string {
	switch name {
	case "os_name":
		return env.OSName
	case "sys_platform":
		return env.SysPlatform
	case "platform_machine":
		return env.PlatformMachine
	case "platform_python_implementation":
		return env.PlatformPythonImplementation
	case "platform_release":
		return env.PlatformRelease
	case "platform_system":
		return env.PlatformSystem
	case "platform_version":
		return env.PlatformVersion
	case "python_version":
		return env.PythonVersion
	case "python_full_version":
		return env.PythonFullVersion
	case "implementation_name":
		return env.ImplementationName
	case "implementation_version":
		return env.ImplementationVersion
	case "extra":
		return env.Extra
	}
	return ""
}

const detectEnvironmentScript = `
import json, os, platform, sys

def format_full_version(info):
    version = "{0.major}.{0.minor}.{0.micro}".format(info)
    if info.releaselevel != "final":
        version += info.releaselevel[0] + str(info.serial)
    return version

json.dump({
    "os_name": os.name,
    "sys_platform": sys.platform,
    "platform_machine": platform.machine(),
    "platform_python_implementation": platform.python_implementation(),
    "platform_release": platform.release(),
    "platform_system": platform.system(),
    "platform_version": platform.version(),
    "python_version": ".".join(platform.python_version_tuple()[:2]),
    "python_full_version": platform.python_version(),
    "implementation_name": sys.implementation.name,
    "implementation_version": format_full_version(sys.implementation.version),
}, sys.stdout)
`

// DetectEnvironment asks the interpreter python for its marker environment.
func DetectEnvironment(runner buildutil.Runner, python string) (*Environment, error) {
	var stdout, stderr bytes.Buffer
	code, err := runner.Run(buildutil.Command{
		Argv:   []string{python, "-c", detectEnvironmentScript},
		Env:    os.Environ(),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Detecting marker environment")
	}
	if code != 0 {
		return nil, errors.Errorf(
			"Detecting marker environment: %s exited %d: %s",
			python,
			code,
			stderr.String(),
		)
	}

	var env Environment
	if err := json.Unmarshal(stdout.Bytes(), &env); err != nil {
		return nil, errors.Wrap(err, "Decoding marker environment")
	}
	return &env, nil
}
