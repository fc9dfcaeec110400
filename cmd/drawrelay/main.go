// Command drawrelay serves the drawing board page and relays draw events
// between every connected browser.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/HaaL01/drawing-board/internal/config"
	"github.com/HaaL01/drawing-board/internal/relay"
	"github.com/HaaL01/drawing-board/internal/server"
)

func main() {
	app := &cli.App{
		Name:   "drawrelay",
		Usage:  "relay shared drawing board events between browsers",
		Flags:  config.RelayFlags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.RelayFromContext(c)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	rl := relay.New(relay.Options{
		SendBuffer:  cfg.SendBuffer,
		StampSender: cfg.StampSender,
		Logger:      logger,
	})
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(cfg, rl, logger),
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server is listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", "peers", rl.Len())
		rl.CloseAll()
		return httpServer.Shutdown(context.Background())
	})

	return g.Wait()
}
