// Package pipeline drives acquisition (download and unpack) and description
// (BUILD generation) of a requirements file's distributions.
package pipeline

import (
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/weberc2/piprules/buildutil"
	"github.com/weberc2/piprules/core"
	"github.com/weberc2/piprules/descriptor"
	"github.com/weberc2/piprules/dist"
	"github.com/weberc2/piprules/download"
	"github.com/weberc2/piprules/wheel"
	"golang.org/x/sync/errgroup"
)

type Pipeline struct {
	Config      core.Config
	Runner      buildutil.Runner
	Logger      *log.Logger
	ScriptMaker descriptor.ScriptMaker

	// Environment filters requirements by their markers. Nil keeps every
	// requirement that is not tied to an extra.
	Environment *dist.Environment
}

// New returns a pipeline for config, detecting the interpreter's marker
// environment if the config asks for it.
func New(config core.Config, runner buildutil.Runner, logger *log.Logger) (Pipeline, error) {
	if err := config.Validate(); err != nil {
		return Pipeline{}, err
	}

	p := Pipeline{Config: config, Runner: runner, Logger: logger}
	if config.NativeScripts {
		p.ScriptMaker = descriptor.TemplateScriptMaker{Python: config.Python}
	} else {
		p.ScriptMaker = descriptor.InstallerScriptMaker{
			Python:     config.Python,
			PythonPath: config.PythonPath,
			Runner:     runner,
		}
	}

	if config.DetectEnvironment {
		env, err := dist.DetectEnvironment(runner, config.Python)
		if err != nil {
			return Pipeline{}, err
		}
		logger.Debug(
			"detected marker environment",
			"python_version", env.PythonVersion,
			"sys_platform", env.SysPlatform,
		)
		p.Environment = env
	}
	return p, nil
}

func (p Pipeline) generator() descriptor.Generator {
	return descriptor.Generator{ScriptMaker: p.ScriptMaker, Logger: p.Logger}
}

// Acquire fills Config.DestDir with the wheels for Config.Requirements.
func (p Pipeline) Acquire() error {
	return download.Reconciler{
		Config: p.Config,
		Runner: p.Runner,
		Logger: p.Logger,
	}.Download()
}

// Describe unpacks every wheel in wheelDir into its own package under
// repoDir and generates its BUILD files.
func (p Pipeline) Describe(wheelDir, repoDir string) ([]dist.Distribution, error) {
	wheels, err := wheel.FindAll(wheelDir)
	if err != nil {
		return nil, err
	}
	return p.DescribeWheels(wheels, repoDir)
}

// DescribeWheels unpacks and describes wheels, up to Config.Jobs at a time.
// Distributions are returned in the order of wheels; the first failure
// aborts the rest.
func (p Pipeline) DescribeWheels(wheels []string, repoDir string) ([]dist.Distribution, error) {
	jobs := p.Config.Jobs
	if jobs < 1 {
		jobs = 1
	}

	unpacker := wheel.Unpacker{Environment: p.Environment}
	generator := p.generator()
	dists := make([]dist.Distribution, len(wheels))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, wheelPath := range wheels {
		i, wheelPath := i, wheelPath
		g.Go(func() error {
			d, err := unpacker.Unpack(wheelPath, repoDir)
			if err != nil {
				return errors.Wrapf(err, "Unpacking %s", wheelPath)
			}
			if err := generator.Generate(d); err != nil {
				return errors.Wrapf(err, "Describing %s", d.ProjectName())
			}
			p.Logger.Info("described", "distribution", d.ProjectName(), "version", d.Version())
			dists[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dists, nil
}

// DescribeInstalled generates BUILD files for the distribution installed
// directly under location.
func (p Pipeline) DescribeInstalled(location string) (dist.Distribution, error) {
	d, err := dist.Find(location, p.Environment)
	if err != nil {
		return nil, errors.Wrapf(err, "Reading distribution in %s", location)
	}
	if err := p.generator().Generate(d); err != nil {
		return nil, errors.Wrapf(err, "Describing %s", d.ProjectName())
	}
	return d, nil
}

// Check verifies the generated repository, logging each problem found.
func (p Pipeline) Check(repoDir string) ([]descriptor.Problem, error) {
	problems, err := descriptor.Check(repoDir)
	if err != nil {
		return nil, err
	}
	for _, problem := range problems {
		p.Logger.Warn(problem.Message, "package", problem.Package, "rule", problem.Rule)
	}
	return problems, nil
}

// Run acquires the configured requirements, describes them into
// Config.RepoDir and checks the result. Problems are reported but do not
// fail the run.
func (p Pipeline) Run() ([]dist.Distribution, error) {
	if err := p.Acquire(); err != nil {
		return nil, err
	}
	dists, err := p.Describe(p.Config.DestDir, p.Config.RepoDir)
	if err != nil {
		return nil, err
	}
	if _, err := p.Check(p.Config.RepoDir); err != nil {
		return nil, err
	}
	return dists, nil
}
