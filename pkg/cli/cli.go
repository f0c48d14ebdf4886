// Package cli provides the command-line interface for axreplay.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/axreplay/pkg/config"
	"github.com/devicelab-dev/axreplay/pkg/core"
	"github.com/devicelab-dev/axreplay/pkg/driver/mock"
	"github.com/devicelab-dev/axreplay/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Introspection backend to use",
		Value:   "mock",
		EnvVars: []string{"AXREPLAY_DRIVER"},
	},
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to tuning config (axreplay.yaml)",
		EnvVars: []string{"AXREPLAY_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file in addition to stderr",
		EnvVars: []string{"AXREPLAY_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable debug logging",
		EnvVars: []string{"AXREPLAY_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "axreplay",
		Usage:   "Replay recorded UI clicks with validation-first targeting",
		Version: Version,
		Description: `axreplay replays clicks recorded against a native UI, revalidating
the target element through a staged pipeline before acting.

Examples:
  axreplay replay session.json
  axreplay replay session.json --index 2 --dry-run
  axreplay show session.json
  axreplay doctor`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			replayCommand,
			showCommand,
			doctorCommand,
		},
		Before: func(c *cli.Context) error {
			return logger.Init(c.String("log-file"), c.Bool("verbose"))
		},
		After: func(c *cli.Context) error {
			logger.Sync()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the tuning config from the flag, the working
// directory, or defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadFromDir(".")
}

// newDriver resolves the backend by name. Native backends link in via
// their own build and register here; the in-memory mock is always
// available.
func newDriver(name string) (core.Driver, error) {
	switch name {
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown driver %q (available: mock)", name)
	}
}
