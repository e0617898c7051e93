package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	appLogger "github.com/zaintech991/ReguLens/pkg/logger"
)

var version = "dev"

func main() {
	if err := run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "regulens: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var opts globalOptions

	app := &cli.Command{
		Name:    "regulens",
		Usage:   "Compliance monitoring API and batch tools",
		Version: version,
		Flags:   opts.flags(),
		After: func(ctx context.Context, c *cli.Command) error {
			appLogger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(&opts),
			cmdGenerate(&opts),
			cmdPipeline(&opts),
			cmdWatch(&opts),
		},
		DefaultCommand: "serve",
	}

	return app.Run(ctx, args)
}
