package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/zaintech991/ReguLens/internal/ingestion"
)

func countFlags(docs, logs *int64) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "documents",
			Usage:       "Number of synthetic documents",
			Value:       10,
			Destination: docs,
		},
		&cli.Int64Flag{
			Name:        "logs",
			Usage:       "Number of synthetic operational logs",
			Value:       50,
			Destination: logs,
		},
	}
}

func cmdGenerate(opts *globalOptions) *cli.Command {
	var docs, logs int64
	var replace bool

	flags := append(countFlags(&docs, &logs), &cli.BoolFlag{
		Name:        "replace",
		Usage:       "Replace existing documents and logs",
		Destination: &replace,
	})

	return &cli.Command{
		Name:  "generate",
		Usage: "Seed the store with synthetic documents and logs",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.processor.GenerateData(ctx, ingestion.GenerateRequest{
				DocumentCount:   int(docs),
				LogCount:        int(logs),
				ReplaceExisting: replace,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func cmdPipeline(opts *globalOptions) *cli.Command {
	var docs, logs int64
	var fresh bool

	flags := append(countFlags(&docs, &logs), &cli.BoolFlag{
		Name:        "generate",
		Usage:       "Regenerate synthetic data before analysis",
		Destination: &fresh,
	})

	return &cli.Command{
		Name:  "pipeline",
		Usage: "Analyze all documents and raise alerts once, then exit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.processor.RunPipeline(ctx, ingestion.PipelineRequest{
				GenerateNewData: fresh,
				DocumentCount:   int(docs),
				LogCount:        int(logs),
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
