package main

import (
	"context"
	"fmt"
	"os"

	_ "time/tzdata"

	"loipen-tracker/internal/cli"
	"loipen-tracker/internal/config"
	"loipen-tracker/internal/logging"
)

func main() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Debugf("configuration loaded: driver=%s location=%s\n", cfg.Database.Driver, cfg.Time.Location)

	root := cli.NewRootCommand(cfg, bootstrap, os.Stdout)
	if err := root.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
