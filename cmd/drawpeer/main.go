// Command drawpeer joins a drawing board relay without a browser. It replays
// everything the other peers draw onto an in-memory canvas, optionally sends
// events read line by line from a file, and writes the canvas to a PNG when
// it exits.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/HaaL01/drawing-board/internal/canvas"
	"github.com/HaaL01/drawing-board/internal/config"
	"github.com/HaaL01/drawing-board/internal/protocol"
	"github.com/HaaL01/drawing-board/internal/reducer"
	"github.com/HaaL01/drawing-board/internal/transport"
)

func main() {
	app := &cli.App{
		Name:   "drawpeer",
		Usage:  "headless drawing board peer",
		Flags:  config.PeerFlags(),
		Action: action,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func action(c *cli.Context) error {
	cfg, err := config.PeerFromContext(c)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return run(ctx, cfg, logger, os.Stdin)
}

func run(ctx context.Context, cfg config.Peer, logger *slog.Logger, stdin io.Reader) error {
	var in io.Reader
	switch cfg.Input {
	case "":
	case "-":
		in = stdin
	default:
		f, err := os.Open(cfg.Input)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		defer f.Close()
		in = f
	}

	board, err := canvas.NewRaster(cfg.Width, cfg.Height, cfg.Background)
	if err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	red := reducer.New(board, logger)

	client, err := transport.Dial(ctx, cfg.URL, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Run(gctx, red)
	})

	if in != nil {
		events := make(chan protocol.Event)
		// not part of the group: a read from stdin cannot be interrupted
		go func() {
			if err := readEvents(gctx, in, events, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("reading input failed", "err", err)
			}
		}()
		g.Go(func() error {
			return client.Pump(gctx, events)
		})
	}

	err = g.Wait()
	switch {
	case errors.Is(err, transport.ErrClosed):
		logger.Warn("relay connection lost", "err", err)
	case errors.Is(err, context.Canceled):
	case err != nil:
		return err
	}

	if cfg.Out != "" {
		if err := board.SavePNG(cfg.Out); err != nil {
			return fmt.Errorf("save canvas: %w", err)
		}
		logger.Info("canvas saved", "path", cfg.Out)
	}
	return nil
}

// readEvents decodes one event per line into out and closes it at EOF.
// Lines that do not decode are skipped.
func readEvents(ctx context.Context, r io.Reader, out chan<- protocol.Event, logger *slog.Logger) error {
	defer close(out)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		ev, err := protocol.Decode(raw)
		if err != nil {
			logger.Warn("skipping input line", "line", line, "err", err)
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sc.Err()
}
