package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runRelay(t *testing.T, args ...string) (Relay, error) {
	t.Helper()
	var cfg Relay
	app := &cli.App{
		Name:  "drawrelay",
		Flags: RelayFlags(),
		Action: func(ctx *cli.Context) (err error) {
			cfg, err = RelayFromContext(ctx)
			return err
		},
	}
	err := app.Run(append([]string{"drawrelay"}, args...))
	return cfg, err
}

func runPeer(t *testing.T, args ...string) (Peer, error) {
	t.Helper()
	var cfg Peer
	app := &cli.App{
		Name:  "drawpeer",
		Flags: PeerFlags(),
		Action: func(ctx *cli.Context) (err error) {
			cfg, err = PeerFromContext(ctx)
			return err
		},
	}
	err := app.Run(append([]string{"drawpeer"}, args...))
	return cfg, err
}

func TestRelayDefaults(t *testing.T) {
	cfg, err := runRelay(t)
	require.NoError(t, err)
	assert.Equal(t, DefaultRelay(), cfg)
}

func TestRelayFlagsAndEnv(t *testing.T) {
	t.Setenv("DRAW_ADDR", "127.0.0.1:9000")
	cfg, err := runRelay(t, "--send-buffer", "16", "--stamp-sender=false", "--static-dir", "/srv/board")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 16, cfg.SendBuffer)
	assert.False(t, cfg.StampSender)
	assert.Equal(t, "/srv/board", cfg.StaticDir)

	_, err = runRelay(t, "--send-buffer", "0")
	assert.Error(t, err)
}

func TestPeerConfig(t *testing.T) {
	cfg, err := runPeer(t)
	require.NoError(t, err)
	assert.Equal(t, DefaultPeer(), cfg)

	t.Setenv("DRAW_OUT", "board.png")
	cfg, err = runPeer(t, "--width", "64", "--height", "32", "--input", "-")
	require.NoError(t, err)
	assert.Equal(t, "board.png", cfg.Out)
	assert.Equal(t, "-", cfg.Input)
	assert.Equal(t, 64, cfg.Width)

	_, err = runPeer(t, "--width", "-1")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("warn", &buf)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")

	_, err = NewLogger("loud", &buf)
	assert.Error(t, err)
}
