package descriptor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/weberc2/piprules/buildutil"
	"github.com/weberc2/piprules/dist"
)

// ScriptMaker writes one executable script per console entry point into
// binDir, named after the entry point.
type ScriptMaker interface {
	MakeScripts(binDir string, eps []dist.EntryPoint) error
}

type InvalidScriptEntryPointErr struct {
	EntryPoint dist.EntryPoint
}

func (err InvalidScriptEntryPointErr) Error() string {
	return fmt.Sprintf(
		"Invalid script entry point '%s': missing callable",
		err.EntryPoint.Spec(),
	)
}

const scriptMakerProgram = `
import sys
from pip._vendor.distlib.scripts import ScriptMaker

maker = ScriptMaker(None, sys.argv[1])
maker.clobber = True
maker.variants = {""}
maker.make_multiple(sys.argv[2:])
`

// InstallerScriptMaker has the installer's own script generator write the
// scripts, so they match what `pip install` would produce for Python.
type InstallerScriptMaker struct {
	Python     string
	PythonPath []string
	Runner     buildutil.Runner
}

func (sm InstallerScriptMaker) MakeScripts(binDir string, eps []dist.EntryPoint) error {
	argv := []string{sm.Python, "-c", scriptMakerProgram, binDir}
	for _, ep := range eps {
		if ep.Attr == "" {
			return InvalidScriptEntryPointErr{ep}
		}
		argv = append(argv, fmt.Sprintf("%s = %s:%s", ep.Name, ep.Module, ep.Attr))
	}

	var stderr bytes.Buffer
	code, err := sm.Runner.Run(buildutil.Command{
		Argv:   argv,
		Env:    buildutil.PrependEnv(os.Environ(), "PYTHONPATH", sm.PythonPath...),
		Stderr: &stderr,
	})
	if err != nil {
		return errors.Wrap(err, "Making scripts")
	}
	if code != 0 {
		return errors.Errorf(
			"Making scripts: %s exited %d: %s",
			sm.Python,
			code,
			strings.TrimSpace(stderr.String()),
		)
	}
	return nil
}

const scriptTemplate = `%s
# -*- coding: utf-8 -*-
import re
import sys
from %s import %s
if __name__ == '__main__':
    sys.argv[0] = re.sub(r'(-script\.pyw|\.exe)?$', '', sys.argv[0])
    sys.exit(%s())
`

// TemplateScriptMaker writes the installer's console script wrapper without
// running an interpreter.
type TemplateScriptMaker struct {
	Python string
}

// shebang runs a bare interpreter name such as `python3` through env, since
// the kernel only accepts absolute interpreter paths.
func (sm TemplateScriptMaker) shebang() string {
	if filepath.IsAbs(sm.Python) {
		return "#!" + sm.Python
	}
	return "#!/usr/bin/env " + sm.Python
}

func (sm TemplateScriptMaker) MakeScripts(binDir string, eps []dist.EntryPoint) error {
	for _, ep := range eps {
		if ep.Attr == "" {
			return InvalidScriptEntryPointErr{ep}
		}
		script := fmt.Sprintf(
			scriptTemplate,
			sm.shebang(),
			ep.Module,
			strings.Split(ep.Attr, ".")[0],
			ep.Attr,
		)
		scriptPath := filepath.Join(binDir, ep.Name)
		if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
			return errors.Wrapf(err, "Writing script %s", scriptPath)
		}
	}
	return nil
}
