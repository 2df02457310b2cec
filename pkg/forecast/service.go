package forecast

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
)

var (
	ErrNoForecast  = fmt.Errorf("no temperature forecast for area")
	ErrNotSetUp    = fmt.Errorf("forecast area not configured")
	ErrBadForecast = fmt.Errorf("malformed forecast")
)

// Client reads the Japan Meteorological Agency area forecast.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// DailyMax returns the highest forecast temperature for the first day
// of the forecast.
func (c *Client) DailyMax(ctx context.Context) (int, error) {
	if c.cfg.AreaCode == "" || c.cfg.AreaName == "" {
		return 0, ErrNotSetUp
	}

	var reports []report
	err := requests.URL(strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + c.cfg.AreaCode + ".json").
		Client(c.httpClient).
		ToJSON(&reports).
		Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch forecast: %w", err)
	}
	if len(reports) == 0 {
		return 0, fmt.Errorf("%w: empty document", ErrBadForecast)
	}
	return firstDayMax(reports[0], c.cfg.AreaName)
}

// The temps series holds a min/max pair per day, so the first day is
// the first half of the series.
func firstDayMax(r report, areaName string) (int, error) {
	for _, ts := range r.TimeSeries {
		if len(ts.TimeDefines) == 0 {
			continue
		}
		for _, a := range ts.Areas {
			if a.Area.Name != areaName || len(a.Temps) == 0 {
				continue
			}
			n := len(ts.TimeDefines) / 2
			if n == 0 || n > len(a.Temps) {
				n = len(a.Temps)
			}
			best, found := 0, false
			for _, raw := range a.Temps[:n] {
				v, err := strconv.Atoi(raw)
				if err != nil {
					return 0, fmt.Errorf("%w: temp %q", ErrBadForecast, raw)
				}
				if !found || v > best {
					best, found = v, true
				}
			}
			return best, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrNoForecast, areaName)
}
