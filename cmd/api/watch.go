package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	appLogger "github.com/zaintech991/ReguLens/pkg/logger"
)

func cmdWatch(opts *globalOptions) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print alerts from the Redis feed as they are published",
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := newRuntime(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.feed == nil {
				return errors.New("alert feed requires redis.enabled and a reachable Redis")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			alerts, err := rt.feed.Subscribe(ctx)
			if err != nil {
				return err
			}

			appLogger.Info("Watching alert feed", zap.String("channel", rt.feed.Channel()))
			for alert := range alerts {
				if err := printJSON(alert); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
