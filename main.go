package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/weberc2/piprules/buildutil"
	"github.com/weberc2/piprules/core"
	"github.com/weberc2/piprules/download"
	"github.com/weberc2/piprules/pipeline"
	"github.com/weberc2/piprules/wheel"
)

var printer = core.NewPrinter(os.Stdout, os.Stderr)

var pipelineFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "python",
		EnvVar: "PIPRULES_PYTHON",
		Usage:  "Python interpreter used to run pip",
	},
	cli.StringSliceFlag{
		Name:  "python-path",
		Usage: "Directory prepended to PYTHONPATH for pip (repeatable)",
	},
	cli.StringFlag{
		Name:   "cache-dir",
		EnvVar: "PIPRULES_CACHE_DIR",
		Usage:  "Flat directory of cached wheels",
	},
	cli.StringFlag{
		Name:  "build-dir",
		Usage: "Scratch directory for pip",
	},
	cli.StringFlag{
		Name:  "dest",
		Usage: "Directory receiving downloaded wheels",
	},
	cli.StringFlag{
		Name:  "repo",
		Usage: "Directory receiving one package per distribution",
	},
	cli.StringFlag{
		Name:  "requirements, r",
		Usage: "Requirements file (may contain hashes)",
	},
	cli.IntFlag{
		Name:  "jobs, j",
		Usage: "Number of distributions described at once",
	},
	cli.BoolFlag{
		Name:  "native-scripts",
		Usage: "Write console scripts without running pip",
	},
	cli.BoolFlag{
		Name:  "no-detect-environment",
		Usage: "Keep every requirement instead of evaluating markers",
	},
}

// loadConfig layers the config file and then any flags set on the command
// line (or through their environment variables) over the defaults.
func loadConfig(c *cli.Context) (core.Config, error) {
	config, err := core.LoadConfig(c.GlobalString("config"))
	if err != nil {
		return core.Config{}, err
	}

	for flag, dst := range map[string]*string{
		"python":       &config.Python,
		"cache-dir":    &config.CacheDir,
		"build-dir":    &config.BuildDir,
		"dest":         &config.DestDir,
		"repo":         &config.RepoDir,
		"requirements": &config.Requirements,
	} {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	if c.IsSet("python-path") {
		config.PythonPath = c.StringSlice("python-path")
	}
	if c.IsSet("jobs") {
		config.Jobs = c.Int("jobs")
	}
	if c.IsSet("native-scripts") {
		config.NativeScripts = c.Bool("native-scripts")
	}
	if c.IsSet("no-detect-environment") {
		config.DetectEnvironment = !c.Bool("no-detect-environment")
	}
	return config, config.Validate()
}

func newLogger(c *cli.Context) *log.Logger {
	return core.NewLogger(os.Stderr, c.GlobalBool("verbose"))
}

func newRunner() buildutil.Runner {
	return buildutil.ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func newPipeline(c *cli.Context) (pipeline.Pipeline, error) {
	config, err := loadConfig(c)
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	return pipeline.New(config, newRunner(), newLogger(c))
}

// exit turns err into the process exit status. A failed pip download exits
// with pip's own status and adds nothing to what pip already printed.
func exit(err error) error {
	if err == nil {
		return nil
	}
	if failed, ok := errors.Cause(err).(*download.InstallerFailedErr); ok {
		return cli.NewExitError("", failed.ExitCode)
	}
	printer.Error("%v", err)
	return cli.NewExitError("", 1)
}

type setting struct {
	name  string
	value string
}

func requireSet(settings ...setting) error {
	for _, s := range settings {
		if s.value == "" {
			return errors.Errorf("Missing required setting '%s'", s.name)
		}
	}
	return nil
}

func downloadAction(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return exit(err)
	}
	config.ExtraArgs = append(config.ExtraArgs, c.Args()...)
	if err := requireSet(
		setting{"requirements", config.Requirements},
		setting{"dest", config.DestDir},
	); err != nil {
		return exit(err)
	}

	if err := exit((download.Reconciler{
		Config: config,
		Runner: newRunner(),
		Logger: newLogger(c),
	}).Download()); err != nil {
		return err
	}
	printer.Success("Downloaded %s into %s", config.Requirements, config.DestDir)
	return nil
}

func unpackAction(c *cli.Context) error {
	p, err := newPipeline(c)
	if err != nil {
		return exit(err)
	}
	if err := requireSet(setting{"repo", p.Config.RepoDir}); err != nil {
		return exit(err)
	}

	wheels := []string(c.Args())
	if len(wheels) < 1 {
		if err := requireSet(setting{"dest", p.Config.DestDir}); err != nil {
			return exit(err)
		}
		if wheels, err = wheel.FindAll(p.Config.DestDir); err != nil {
			return exit(err)
		}
	}

	dists, err := p.DescribeWheels(wheels, p.Config.RepoDir)
	if err != nil {
		return exit(err)
	}
	for _, d := range dists {
		printer.Success("Described %s %s", d.ProjectName(), d.Version())
	}
	return nil
}

func genbuildAction(c *cli.Context) error {
	p, err := newPipeline(c)
	if err != nil {
		return exit(err)
	}
	location := c.String("location")
	if err := requireSet(setting{"location", location}); err != nil {
		return exit(err)
	}

	d, err := p.DescribeInstalled(location)
	if err != nil {
		return exit(err)
	}
	printer.Success("Described %s %s", d.ProjectName(), d.Version())
	return nil
}

func checkAction(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return exit(err)
	}
	if err := requireSet(setting{"repo", config.RepoDir}); err != nil {
		return exit(err)
	}

	p := pipeline.Pipeline{Config: config, Logger: newLogger(c)}
	problems, err := p.Check(config.RepoDir)
	if err != nil {
		return exit(err)
	}
	for _, problem := range problems {
		printer.Error("%s", problem)
	}
	if len(problems) > 0 {
		return cli.NewExitError("", 1)
	}
	printer.Success("No problems in %s", config.RepoDir)
	return nil
}

func installAction(c *cli.Context) error {
	p, err := newPipeline(c)
	if err != nil {
		return exit(err)
	}
	p.Config.ExtraArgs = append(p.Config.ExtraArgs, c.Args()...)
	if err := requireSet(
		setting{"requirements", p.Config.Requirements},
		setting{"dest", p.Config.DestDir},
		setting{"repo", p.Config.RepoDir},
	); err != nil {
		return exit(err)
	}

	dists, err := p.Run()
	if err != nil {
		return exit(err)
	}
	printer.Success("Installed %d distributions into %s", len(dists), p.Config.RepoDir)
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "piprules"
	app.Usage = "Generate BUILD packages for Python distributions"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "TOML config file",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "Log debug output",
		},
	}
	app.Commands = []cli.Command{{
		Name:      "download",
		Usage:     "Fetch the wheels for a requirements file, preferring the cache",
		ArgsUsage: "[-- pip args...]",
		Flags:     pipelineFlags,
		Action:    downloadAction,
	}, {
		Name:      "unpack",
		Usage:     "Unpack wheels into packages and generate their BUILD files",
		ArgsUsage: "[wheel...]",
		Flags:     pipelineFlags,
		Action:    unpackAction,
	}, {
		Name:  "genbuild",
		Usage: "Generate BUILD files for an installed distribution",
		Flags: append([]cli.Flag{
			cli.StringFlag{
				Name:  "location",
				Usage: "Directory holding the distribution's metadata",
			},
		}, pipelineFlags...),
		Action: genbuildAction,
	}, {
		Name:   "check",
		Usage:  "Verify that every label in the generated packages resolves",
		Flags:  pipelineFlags,
		Action: checkAction,
	}, {
		Name:      "install",
		Usage:     "Download, unpack, describe and check",
		ArgsUsage: "[-- pip args...]",
		Flags:     pipelineFlags,
		Action:    installAction,
	}}

	if err := app.Run(os.Args); err != nil {
		printer.Error("%v", err)
		os.Exit(1)
	}
}
