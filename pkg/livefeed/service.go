package livefeed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var ErrGaveUp = fmt.Errorf("gave up connecting to live feed")

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowAllOrigins},
		clients:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the request, sends the latest message if any and keeps
// the client registered until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	writeMu := h.addClient(conn)
	if latest := h.Latest(); latest != nil {
		writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, latest)
		writeMu.Unlock()
		if err != nil {
			h.removeClient(conn)
			return
		}
	}

	// Reads only to notice the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.removeClient(conn)
			return
		}
	}
}

// Broadcast stores msg as the latest message and sends it to every client.
// Clients that fail to receive it are dropped.
func (h *Hub) Broadcast(msg []byte) {
	h.latestMu.Lock()
	h.latest = msg
	h.latestMu.Unlock()

	h.clientsMu.RLock()
	clients := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for c, mu := range h.clients {
		clients[c] = mu
	}
	h.clientsMu.RUnlock()

	for c, mu := range clients {
		mu.Lock()
		err := c.WriteMessage(websocket.TextMessage, msg)
		mu.Unlock()
		if err != nil {
			log.WithError(err).Debug("dropping websocket client")
			h.removeClient(c)
		}
	}
}

func (h *Hub) Latest() []byte {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	return h.latest
}

func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(conn *websocket.Conn) *sync.Mutex {
	mu := &sync.Mutex{}
	h.clientsMu.Lock()
	h.clients[conn] = mu
	h.clientsMu.Unlock()
	log.WithField("remote", conn.RemoteAddr().String()).Debug("websocket client connected")
	return mu
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	delete(h.clients, conn)
	h.clientsMu.Unlock()
	conn.Close()
}

// retryDelay doubles per attempt up to max.
func retryDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt > 30 {
		return max
	}
	d := time.Duration(1<<attempt) * base
	if d > max {
		return max
	}
	return d
}

// StartListener connects to the feed and calls handle for every text
// message until ctx is cancelled. Lost connections are retried with
// exponential backoff; ErrGaveUp is returned after MaxRetries consecutive
// failures.
func StartListener(ctx context.Context, cfg ListenerConfig, handle func(msg []byte)) error {
	retryCount := 0
	for {
		if retryCount > 0 {
			delay := retryDelay(retryCount-1, cfg.BaseRetryDelay, cfg.MaxRetryDelay)
			log.WithFields(log.Fields{
				"delay":   delay,
				"attempt": retryCount + 1,
				"max":     cfg.MaxRetries,
			}).Info("retrying live feed connection")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
		}

		log.WithField("url", cfg.URL).Info("connecting to live feed")
		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		c, _, err := dialer.DialContext(ctx, cfg.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Warn("live feed connection failed")
			retryCount++
			if retryCount >= cfg.MaxRetries {
				return fmt.Errorf("%w after %d attempts: %w", ErrGaveUp, retryCount, err)
			}
			continue
		}

		log.Info("connected to live feed")
		retryCount = 0
		broken := handleConnection(ctx, c, cfg, handle)
		c.Close()
		if !broken {
			return nil
		}
		log.Warn("live feed connection lost, will retry")
		retryCount++
	}
}

// handleConnection returns true when the connection broke and false when
// ctx ended it.
func handleConnection(ctx context.Context, c *websocket.Conn, cfg ListenerConfig, handle func(msg []byte)) bool {
	done := make(chan struct{})

	c.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	go func() {
		defer close(done)
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.WithError(err).Warn("live feed error")
				} else {
					log.WithError(err).Debug("live feed closed")
				}
				return
			}
			c.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
			if messageType != websocket.TextMessage {
				log.WithField("type", messageType).Debug("ignoring non-text message")
				continue
			}
			handle(message)
		}
	}()

	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return true
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := c.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.WithError(err).Warn("failed to send ping")
			}
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
				log.WithError(err).Debug("could not send close message")
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return false
		}
	}
}
