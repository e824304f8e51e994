// astergains updates the ASTER gain codes of GLIMS STAR files and compares STAR files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bruceraup/glims-aster-gains/internal/config"
	"github.com/bruceraup/glims-aster-gains/internal/log"
	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"github.com/bruceraup/glims-aster-gains/pkg/gain"
	"github.com/bruceraup/glims-aster-gains/pkg/gainservice"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const version = "0.3.0"

// Exit codes.
const (
	exitFailure   = 1
	exitTransport = 2 // the gain service could not be reached
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout)
	app.ExitErrHandler = func(c *cli.Context, err error) {
		log.Sync()
		cli.HandleExitCoder(err)
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Sync()
		os.Exit(exitFailure)
	}
	log.Sync()
}

// cmd carries the state shared by the commands.
type cmd struct {
	cfg    *config.Config
	stdout io.Writer
}

func newApp(stdout io.Writer) *cli.App {
	c := &cmd{stdout: stdout}
	return &cli.App{
		Name:    "astergains",
		Usage:   "update and compare the ASTER gain codes of GLIMS STAR files",
		Version: version,
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: c.setup,
		Commands: []*cli.Command{
			{
				Name:      "update",
				Usage:     "write a copy of a STAR file with gain codes looked up for every observation",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "STAR file to update, defaults to files.input"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "updated STAR file, defaults to files.output"},
				},
				Action: c.update,
			},
			{
				Name:      "diff",
				Usage:     "list the rows whose gain codes differ between two STAR files",
				ArgsUsage: "[BEFORE AFTER]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "summary", Aliases: []string{"s"}, Usage: "print the number of changes per band"},
				},
				Action: c.diff,
			},
			{
				Name:      "gain",
				Usage:     "look up the gain of a single observation",
				ArgsUsage: "DOY LAT BAND [EQ_TIME]",
				Action:    c.gain,
			},
		},
	}
}

// setup loads the configuration and initializes the logger.
func (c *cmd) setup(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	if err := log.Init(ctx.Bool("debug") || cfg.Logging.Debug); err != nil {
		return cli.Exit(err, exitFailure)
	}
	c.cfg = cfg
	log.Debugw("configuration loaded", "file", ctx.String("config"), "source", cfg.Lookup.Source,
		"url", cfg.Lookup.URL, "eq_time", cfg.Lookup.EqCrossingTime)
	return nil
}

// source returns the configured gain source.
func (c *cmd) source(logger *zap.SugaredLogger) (gain.Source, func(), error) {
	if c.cfg.Lookup.Source == config.SourceModel {
		return gain.NewModel(), func() {}, nil
	}

	opts := c.cfg.Lookup.ClientOptions()
	opts.Logger = logger
	client, err := gainservice.NewClient(c.cfg.Lookup.URL, opts)
	if err != nil {
		return nil, nil, err
	}
	return client, client.CloseIdleConnections, nil
}

// exitError logs err and converts it to the exit code of the run.
func exitError(err error) error {
	if err == nil {
		return nil
	}

	var lerr *gainservice.LookupError
	if errors.As(err, &lerr) {
		log.Errorw("gain lookup failed", "url", lerr.URL, "status", lerr.StatusCode, "error", lerr.Err)
	} else {
		log.Errorw("run failed", "error", err)
	}

	// an interrupted run is no transport failure, wherever the signal hit it
	if errors.Is(err, context.Canceled) {
		return cli.Exit(err, exitFailure)
	}
	if errors.Is(err, aster.ErrTransport) {
		return cli.Exit(err, exitTransport)
	}
	return cli.Exit(err, exitFailure)
}
