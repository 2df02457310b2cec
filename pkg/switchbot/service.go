package switchbot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/circulator"
	"github.com/NotCoffee418/home_climate_control/pkg/types"
	"github.com/carlmjohnson/requests"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotConfigured = fmt.Errorf("device not configured")
	ErrReadFailed    = fmt.Errorf("sensor read failed")
	ErrCommandFailed = fmt.Errorf("device command failed")
	ErrBadResponse   = fmt.Errorf("unexpected device response")
)

// Client talks to the SwitchBot cloud API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
	nonce      func() string
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		now:        time.Now,
		nonce:      uuid.NewString,
	}
}

// Sign returns the auth headers for a request made at t.
func Sign(token, secret string, t time.Time, nonce string) http.Header {
	ts := strconv.FormatInt(t.UnixMilli(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token + ts + nonce))

	h := http.Header{}
	h.Set("Authorization", token)
	h.Set("t", ts)
	h.Set("sign", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	h.Set("nonce", nonce)
	return h
}

func (c *Client) request(path string) *requests.Builder {
	b := requests.URL(c.cfg.BaseURL).
		Path(path).
		Client(c.httpClient)
	for k, v := range Sign(c.cfg.Token, c.cfg.Secret, c.now(), c.nonce()) {
		b.Header(k, v...)
	}
	return b
}

func (c *Client) fetchStatus(ctx context.Context, deviceID string) (deviceStatus, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.Attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.cfg.RetryDelay); err != nil {
				return deviceStatus{}, errors.Join(ErrReadFailed, err, lastErr)
			}
		}

		var resp statusResponse
		err := c.request("/v1.1/devices/" + deviceID + "/status").
			ToJSON(&resp).
			Fetch(ctx)
		if err == nil && resp.StatusCode != statusSuccess {
			err = fmt.Errorf("%w: status %d %q", ErrBadResponse, resp.StatusCode, resp.Message)
		}
		if err == nil && (resp.Body.Temperature == nil || resp.Body.Humidity == nil) {
			err = fmt.Errorf("%w: missing temperature or humidity", ErrBadResponse)
		}
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			log.WithFields(log.Fields{
				"device":  deviceID,
				"attempt": attempt + 1,
			}).WithError(err).Warn("sensor read failed")
			continue
		}
		return resp.Body, nil
	}
	return deviceStatus{}, errors.Join(ErrReadFailed, lastErr)
}

func (c *Client) sensorDevice(loc types.Location) (string, error) {
	id := c.cfg.Sensors[loc]
	if id == "" {
		return "", fmt.Errorf("%w: %s sensor", ErrNotConfigured, loc)
	}
	return id, nil
}

// HasSensor reports whether a device id is configured for loc.
func (c *Client) HasSensor(loc types.Location) bool {
	return c.cfg.Sensors[loc] != ""
}

func (c *Client) ReadTemperatureHumidity(ctx context.Context, loc types.Location) (types.TemperatureHumidity, error) {
	id, err := c.sensorDevice(loc)
	if err != nil {
		return types.TemperatureHumidity{}, err
	}
	st, err := c.fetchStatus(ctx, id)
	if err != nil {
		return types.TemperatureHumidity{}, fmt.Errorf("%s: %w", loc, err)
	}
	return types.TemperatureHumidity{Temperature: *st.Temperature, Humidity: *st.Humidity}, nil
}

func (c *Client) ReadCO2(ctx context.Context, loc types.Location) (types.CO2Reading, error) {
	id, err := c.sensorDevice(loc)
	if err != nil {
		return types.CO2Reading{}, err
	}
	st, err := c.fetchStatus(ctx, id)
	if err != nil {
		return types.CO2Reading{}, fmt.Errorf("%s: %w", loc, err)
	}
	if st.CO2 == nil {
		return types.CO2Reading{}, fmt.Errorf("%s: %w: missing CO2", loc, ErrBadResponse)
	}
	return types.CO2Reading{
		TemperatureHumidity: types.TemperatureHumidity{Temperature: *st.Temperature, Humidity: *st.Humidity},
		CO2:                 *st.CO2,
	}, nil
}

// SendCommand posts a single command. The API is rate limited, so every
// command waits CommandPause first.
func (c *Client) SendCommand(ctx context.Context, deviceID, command, parameter, commandType string) error {
	if deviceID == "" {
		return fmt.Errorf("%w: command %q", ErrNotConfigured, command)
	}
	if err := sleep(ctx, c.cfg.CommandPause); err != nil {
		return err
	}

	var resp commandResponse
	err := c.request("/v1.1/devices/" + deviceID + "/commands").
		BodyJSON(commandRequest{Command: command, Parameter: parameter, CommandType: commandType}).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return errors.Join(ErrCommandFailed, err)
	}
	if resp.StatusCode != statusSuccess {
		return fmt.Errorf("%w: %s: status %d %q", ErrCommandFailed, command, resp.StatusCode, resp.Message)
	}
	log.WithFields(log.Fields{
		"device":    deviceID,
		"command":   command,
		"parameter": parameter,
	}).Debug("command sent")
	return nil
}

// ApplyAircon sends a full aircon setting. Powerful modes have no setAll
// equivalent and go out as a learned command on the support device.
func (c *Client) ApplyAircon(ctx context.Context, s types.AirconSetting) error {
	switch s.Mode {
	case types.AirconModePowerfulCool:
		return c.SendCommand(ctx, c.cfg.AirconSupportDevice, c.cfg.PowerfulCoolCommand, defaultParameter, commandTypeCustomize)
	case types.AirconModePowerfulHeat:
		return c.SendCommand(ctx, c.cfg.AirconSupportDevice, c.cfg.PowerfulHeatCommand, defaultParameter, commandTypeCustomize)
	}
	return c.SendCommand(ctx, c.cfg.AirconDevice, setAllCommand, s.SetAllParameter(), commandTypeCommand)
}

func (c *Client) SendCirculator(ctx context.Context, cmd circulator.Command) error {
	var name string
	switch cmd {
	case circulator.CommandTogglePower:
		name = c.cfg.CirculatorPowerCommand
	case circulator.CommandIncrease:
		name = c.cfg.CirculatorUpCommand
	case circulator.CommandDecrease:
		name = c.cfg.CirculatorDownCommand
	default:
		return fmt.Errorf("%w: unknown circulator command %s", ErrCommandFailed, cmd)
	}
	return c.SendCommand(ctx, c.cfg.CirculatorDevice, name, defaultParameter, commandTypeCustomize)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
