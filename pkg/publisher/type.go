package publisher

import "time"

const (
	// Reports are retained so a new subscriber sees the last cycle at once.
	qos      = 1
	retained = true

	connectTimeout = 10 * time.Second
	disconnectWait = 250 // ms
)

type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
}
