package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rogerio-castellano/finance-tracker/internal/cli"
	"github.com/rogerio-castellano/finance-tracker/internal/config"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	global := flag.NewFlagSet("tracker", flag.ContinueOnError)
	global.SetInterspersed(false)
	configFile := global.String("config", "", "path to a YAML config file")
	if err := global.Parse(os.Args[1:]); err != nil {
		return 2
	}

	cfg, err := config.Load(*configFile)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		return 1
	}

	level, _ := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{Level: level, Component: applog.ComponentCLI, Output: os.Stderr})

	tokenFile := cfg.Client.TokenFile
	if tokenFile == "" {
		tokenFile = defaultTokenFile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.New(os.Stdout, cli.Options{
		BaseURL:   cfg.Client.BaseURL,
		TokenFile: tokenFile,
		Timeout:   cfg.Client.Timeout,
		RateLimit: cfg.Client.RateLimit,
		Months:    cfg.Client.Months,
		Logger:    logger,
	})
	if err := app.Run(ctx, global.Args()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "❌", cli.Describe(err))
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "finance-tracker", "session.json")
}
