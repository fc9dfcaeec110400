// Package web holds the static page served by the relay.
package web

import "embed"

// Assets contains index.html and client.js.
//
//go:embed index.html client.js
var Assets embed.FS
