// Command tzserve serves decoded time zone data over HTTP.
//
// Configuration comes from an optional YAML file; flags override it.
// By default zones are served from the first zoneinfo directory found
// on the host.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/zoneinfo/go-tzif/internal/zoneapi"
)

func main() {
	app := serveCmd()
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	var (
		configPath  string
		addr        string
		zoneinfoDir string
		logLevel    string
		verbose     bool
	)

	return &cli.Command{
		Name:  "tzserve",
		Usage: "Serve decoded time zone data over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to a YAML config file",
				Value:       "tzserve.yaml",
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       zoneapi.DefaultAddress,
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "zoneinfo-dir",
				Usage:       "serve zones from this directory",
				Destination: &zoneinfoDir,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Destination: &logLevel,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "development log output",
				Destination: &verbose,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := zoneapi.LoadConfig(configPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			// Flags override the config file.
			if c.IsSet("addr") || cfg.Address == "" {
				cfg.Address = addr
			}
			if c.IsSet("zoneinfo-dir") {
				cfg.ZoneinfoDir = zoneinfoDir
			}
			if c.IsSet("log-level") {
				cfg.LogLevel = logLevel
			}

			log, err := newLogger(cfg.LogLevel, verbose)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: creating logger: %v", err), 1)
			}
			defer func() { _ = log.Sync() }()

			dir, err := zoneapi.ResolveZoneinfoDir(cfg.ZoneinfoDir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			e := echo.New()
			e.Use(middleware.Recover())
			e.Use(zoneapi.RequestID())
			e.Use(zoneapi.AccessLog(log))
			zoneapi.NewServer(dir, log).Register(e)

			log.Info("starting server",
				zap.String("address", cfg.Address),
				zap.String("zoneinfo_dir", dir))
			sc := echo.StartConfig{Address: cfg.Address}
			return sc.Start(ctx, e)
		},
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}
