package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ideavault/ideavault-backend/internal/app"
	"github.com/ideavault/ideavault-backend/internal/config"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

var Version = "dev"

func main() {
	cliApp := &cli.App{
		Name:    "ideavault",
		Usage:   "IdeaVault backend",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before reading the environment"},
		},
		Before: func(c *cli.Context) error {
			if err := godotenv.Load(c.String("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", c.String("env-file"), err)
			}
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the user data tables",
				Action: migrate,
			},
			{
				Name:   "check-config",
				Usage:  "Print the configuration report; exits 1 when a category is invalid",
				Action: checkConfig,
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func serve(c *cli.Context) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Loading environment variables...")
	cfg := app.LoadConfig(log)

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Start(ctx)
	return a.Run(ctx)
}

func migrate(_ *cli.Context) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()
	return app.Migrate(log, app.LoadConfig(log))
}

func checkConfig(c *cli.Context) error {
	res := config.Validate(os.LookupEnv, config.SideServer)
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Valid {
		return cli.Exit("configuration invalid", 1)
	}
	return nil
}
