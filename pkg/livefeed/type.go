// Package livefeed pushes cycle reports to websocket clients and follows
// such a feed from the other end.
package livefeed

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub keeps the connected clients and the last message sent to them.
type Hub struct {
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	latestMu sync.RWMutex
	latest   []byte
}

// ListenerConfig controls reconnects of StartListener.
type ListenerConfig struct {
	// URL of the feed, e.g. ws://host:9040/ws.
	URL            string
	MaxRetries     int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration
	// A connection is considered dead when nothing arrives for this long.
	ReadTimeout  time.Duration
	PingInterval time.Duration
}

func DefaultListenerConfig(url string) ListenerConfig {
	return ListenerConfig{
		URL:            url,
		MaxRetries:     10,
		BaseRetryDelay: 2 * time.Second,
		MaxRetryDelay:  60 * time.Second,
		ReadTimeout:    90 * time.Second,
		PingInterval:   30 * time.Second,
	}
}

// allowAllOrigins accepts browser clients from anywhere on the LAN.
func allowAllOrigins(*http.Request) bool {
	return true
}
