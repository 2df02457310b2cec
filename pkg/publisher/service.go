// Package publisher fans cycle reports out over MQTT.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NotCoffee418/home_climate_control/pkg/cycle"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

var (
	ErrConnect = fmt.Errorf("mqtt connect failed")
	ErrPublish = fmt.Errorf("mqtt publish failed")
)

type Publisher struct {
	client mqtt.Client
	topic  string
}

// Connect opens a broker connection for the lifetime of one process.
func Connect(cfg Config) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(false)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: %s: timed out", ErrConnect, cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, cfg.Broker, err)
	}
	log.WithFields(log.Fields{"broker": cfg.Broker, "topic": cfg.Topic}).Debug("connected to mqtt broker")
	return New(client, cfg.Topic), nil
}

// New wraps an already connected client.
func New(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Publish sends the report as JSON and waits for the broker to acknowledge it.
func (p *Publisher) Publish(ctx context.Context, r cycle.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	token := p.client.Publish(p.topic, qos, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublish, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	log.WithField("topic", p.topic).Debug("published cycle report")
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(disconnectWait)
}
