// Package server exposes the relay over HTTP: the static page, its script
// and the websocket endpoint.
package server

import (
	"bufio"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/felixge/httpsnoop"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/HaaL01/drawing-board/internal/config"
	"github.com/HaaL01/drawing-board/internal/relay"
	"github.com/HaaL01/drawing-board/web"
)

// New builds the HTTP handler for cfg around rl.
func New(cfg config.Relay, rl *relay.Relay, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	var assets fs.FS = web.Assets
	if cfg.StaticDir != "" {
		assets = os.DirFS(cfg.StaticDir)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", serveAsset(assets, "index.html", "text/html; charset=utf-8", logger))
	r.GET("/client.js", serveAsset(assets, "client.js", "application/javascript; charset=utf-8", logger))
	r.GET("/ws", handleWebSocket(upgrader, rl, logger))
	r.NoRoute(func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	return accessLog(r, logger)
}

func serveAsset(assets fs.FS, name, contentType string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := fs.ReadFile(assets, name)
		if err != nil {
			logger.Error("failed to read asset", "name", name, "err", err)
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func handleWebSocket(upgrader websocket.Upgrader, rl *relay.Relay, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "remote", c.Request.RemoteAddr, "err", err)
			return
		}
		logger.Info("handled", "method", c.Request.Method, "url", c.Request.URL.String(), "status", http.StatusSwitchingProtocols)
		rl.Serve(conn)
	}
}

// accessLog logs one line per request. Successful websocket upgrades are
// logged by handleWebSocket instead, since the 101 is written on the
// hijacked connection.
func accessLog(h http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hijacked := false
		w = httpsnoop.Wrap(w, httpsnoop.Hooks{
			Hijack: func(next httpsnoop.HijackFunc) httpsnoop.HijackFunc {
				return func() (net.Conn, *bufio.ReadWriter, error) {
					hijacked = true
					return next()
				}
			},
		})
		m := httpsnoop.CaptureMetrics(h, w, req)
		if hijacked {
			return
		}
		logger.Info("handled", "method", req.Method, "url", req.URL.String(), "duration", m.Duration, "status", m.Code)
	})
}
