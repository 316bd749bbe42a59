package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alexbaden/triton/internal/config"
	"github.com/alexbaden/triton/internal/driver"
	"github.com/alexbaden/triton/internal/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// env is filled in by the app's Before hook and shared by all commands.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func (e *env) manager() (*driver.Manager, error) {
	return driver.NewManager(e.cfg, e.log)
}

func newApp(out io.Writer) *cli.App {
	e := &env{}

	return &cli.App{
		Name:   "tritondrv",
		Usage:  "Inspect and benchmark kernel compiler backend drivers",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"TRITONDRV_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "emulate",
				Usage:   "Bind the named backend (cuda, hip) to the emulated host runtime",
				EnvVars: []string{"TRITONDRV_EMULATE"},
			},
			&cli.StringFlag{
				Name:  "verbosity",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := config.Default()
			if path := c.String("config"); path != "" {
				var err error
				cfg, err = config.LoadConfig(path)
				if err != nil {
					return err
				}
			}
			if c.IsSet("emulate") {
				cfg.Drivers.Emulate = c.String("emulate")
			}
			if c.IsSet("verbosity") {
				cfg.Logger.Verbosity = c.String("verbosity")
			}

			zapLogger, err := logger.New(cfg.Logger.Verbosity, cfg.Logger.Encoding)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = zapLogger.Named("tritondrv")
			return nil
		},
		After: func(c *cli.Context) error {
			if e.log != nil {
				_ = e.log.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			initCommand(),
			driversCommand(e),
			targetCommand(e),
			mapTypeCommand(e),
			benchCommand(e),
			serveCommand(e),
		},
	}
}

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
