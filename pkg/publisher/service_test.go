package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/cycle"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newToken(err error, finished bool) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if finished {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient only implements what Publisher uses.
type fakeClient struct {
	mqtt.Client
	sent  []published
	token *fakeToken
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic, qos, retained, payload.([]byte)})
	return c.token
}

func TestPublish(t *testing.T) {
	client := &fakeClient{token: newToken(nil, true)}
	p := New(client, "home_climate_control/cycle")

	rep := cycle.Report{Timestamp: time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC), Bedtime: true}
	require.NoError(t, p.Publish(context.Background(), rep))

	require.Len(t, client.sent, 1)
	msg := client.sent[0]
	assert.Equal(t, "home_climate_control/cycle", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Equal(t, true, decoded["bedtime"])
	assert.Equal(t, "2024-07-10T10:00:00Z", decoded["timestamp"])
}

func TestPublishBrokerError(t *testing.T) {
	client := &fakeClient{token: newToken(errors.New("not authorized"), true)}
	err := New(client, "t").Publish(context.Background(), cycle.Report{})
	assert.ErrorIs(t, err, ErrPublish)
	assert.ErrorContains(t, err, "not authorized")
}

func TestPublishContextCancelled(t *testing.T) {
	client := &fakeClient{token: newToken(nil, false)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(client, "t").Publish(ctx, cycle.Report{})
	assert.ErrorIs(t, err, ErrPublish)
	assert.ErrorIs(t, err, context.Canceled)
}
