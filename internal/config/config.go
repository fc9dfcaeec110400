// Package config holds the settings of the relay and peer binaries and the
// command line flags that populate them.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/HaaL01/drawing-board/internal/relay"
)

const envPrefix = "DRAW_"

// Relay configures cmd/drawrelay.
type Relay struct {
	Addr            string
	StaticDir       string
	SendBuffer      int
	ReadBufferSize  int
	WriteBufferSize int
	StampSender     bool
	LogLevel        string
}

// Peer configures cmd/drawpeer.
type Peer struct {
	URL        string
	Input      string
	Out        string
	Width      int
	Height     int
	Background string
	LogLevel   string
}

// DefaultRelay returns the relay settings used when no flag is given.
func DefaultRelay() Relay {
	return Relay{
		Addr:            ":8080",
		SendBuffer:      relay.DefaultSendBuffer,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		StampSender:     true,
		LogLevel:        "info",
	}
}

// DefaultPeer returns the peer settings used when no flag is given.
func DefaultPeer() Peer {
	return Peer{
		URL:        "ws://localhost:8080/ws",
		Width:      800,
		Height:     600,
		Background: "#ffffff",
		LogLevel:   "info",
	}
}

func env(name string) []string { return []string{envPrefix + name} }

// Command line flags, each also read from a DRAW_* environment variable.
var (
	LogLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error)",
		Value:   "info",
		EnvVars: env("LOG_LEVEL"),
	}

	AddrFlag = &cli.StringFlag{
		Name:    "addr",
		Usage:   "address to listen on",
		Value:   DefaultRelay().Addr,
		EnvVars: env("ADDR"),
	}
	StaticDirFlag = &cli.StringFlag{
		Name:    "static-dir",
		Usage:   "serve index.html and client.js from this directory instead of the embedded copies",
		EnvVars: env("STATIC_DIR"),
	}
	SendBufferFlag = &cli.IntFlag{
		Name:    "send-buffer",
		Usage:   "messages queued per peer before dropping",
		Value:   DefaultRelay().SendBuffer,
		EnvVars: env("SEND_BUFFER"),
	}
	ReadBufferFlag = &cli.IntFlag{
		Name:    "read-buffer",
		Usage:   "websocket read buffer size in bytes",
		Value:   DefaultRelay().ReadBufferSize,
		EnvVars: env("READ_BUFFER"),
	}
	WriteBufferFlag = &cli.IntFlag{
		Name:    "write-buffer",
		Usage:   "websocket write buffer size in bytes",
		Value:   DefaultRelay().WriteBufferSize,
		EnvVars: env("WRITE_BUFFER"),
	}
	StampSenderFlag = &cli.BoolFlag{
		Name:    "stamp-sender",
		Usage:   "set userId on relayed JSON objects to the sender's identity",
		Value:   true,
		EnvVars: env("STAMP_SENDER"),
	}

	URLFlag = &cli.StringFlag{
		Name:    "url",
		Usage:   "relay websocket url",
		Value:   DefaultPeer().URL,
		EnvVars: env("URL"),
	}
	InputFlag = &cli.StringFlag{
		Name:    "input",
		Usage:   "file of JSON events to send, one per line (- for stdin)",
		EnvVars: env("INPUT"),
	}
	OutFlag = &cli.StringFlag{
		Name:    "out",
		Usage:   "write the canvas to this PNG file on exit",
		EnvVars: env("OUT"),
	}
	WidthFlag = &cli.IntFlag{
		Name:    "width",
		Usage:   "canvas width",
		Value:   DefaultPeer().Width,
		EnvVars: env("WIDTH"),
	}
	HeightFlag = &cli.IntFlag{
		Name:    "height",
		Usage:   "canvas height",
		Value:   DefaultPeer().Height,
		EnvVars: env("HEIGHT"),
	}
	BackgroundFlag = &cli.StringFlag{
		Name:    "background",
		Usage:   "canvas background color, empty for transparent",
		Value:   DefaultPeer().Background,
		EnvVars: env("BACKGROUND"),
	}
)

// RelayFlags returns the flags understood by cmd/drawrelay.
func RelayFlags() []cli.Flag {
	return []cli.Flag{AddrFlag, StaticDirFlag, SendBufferFlag, ReadBufferFlag, WriteBufferFlag, StampSenderFlag, LogLevelFlag}
}

// PeerFlags returns the flags understood by cmd/drawpeer.
func PeerFlags() []cli.Flag {
	return []cli.Flag{URLFlag, InputFlag, OutFlag, WidthFlag, HeightFlag, BackgroundFlag, LogLevelFlag}
}

// RelayFromContext reads and validates the relay settings.
func RelayFromContext(ctx *cli.Context) (Relay, error) {
	cfg := Relay{
		Addr:            ctx.String(AddrFlag.Name),
		StaticDir:       ctx.String(StaticDirFlag.Name),
		SendBuffer:      ctx.Int(SendBufferFlag.Name),
		ReadBufferSize:  ctx.Int(ReadBufferFlag.Name),
		WriteBufferSize: ctx.Int(WriteBufferFlag.Name),
		StampSender:     ctx.Bool(StampSenderFlag.Name),
		LogLevel:        ctx.String(LogLevelFlag.Name),
	}
	if cfg.Addr == "" {
		return cfg, errors.New("listen address is empty")
	}
	if cfg.SendBuffer <= 0 {
		return cfg, fmt.Errorf("send buffer must be positive, got %d", cfg.SendBuffer)
	}
	if cfg.ReadBufferSize < 0 || cfg.WriteBufferSize < 0 {
		return cfg, errors.New("buffer sizes must not be negative")
	}
	return cfg, nil
}

// PeerFromContext reads and validates the peer settings.
func PeerFromContext(ctx *cli.Context) (Peer, error) {
	cfg := Peer{
		URL:        ctx.String(URLFlag.Name),
		Input:      ctx.String(InputFlag.Name),
		Out:        ctx.String(OutFlag.Name),
		Width:      ctx.Int(WidthFlag.Name),
		Height:     ctx.Int(HeightFlag.Name),
		Background: ctx.String(BackgroundFlag.Name),
		LogLevel:   ctx.String(LogLevelFlag.Name),
	}
	if cfg.URL == "" {
		return cfg, errors.New("relay url is empty")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("invalid canvas size %dx%d", cfg.Width, cfg.Height)
	}
	return cfg, nil
}

// NewLogger returns a text logger writing to w at the named level.
func NewLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
