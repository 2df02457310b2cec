package forecast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokyoForecast = `[
  {
    "publishingOffice": "気象庁",
    "timeSeries": [
      {
        "timeDefines": ["2024-07-10T11:00:00+09:00", "2024-07-11T00:00:00+09:00"],
        "areas": [{"area": {"name": "東京地方", "code": "130010"}, "weathers": ["晴れ", "曇り"]}]
      },
      {
        "timeDefines": [
          "2024-07-10T09:00:00+09:00", "2024-07-10T00:00:00+09:00",
          "2024-07-11T00:00:00+09:00", "2024-07-11T09:00:00+09:00"
        ],
        "areas": [
          {"area": {"name": "東京", "code": "44132"}, "temps": ["31", "34", "26", "29"]},
          {"area": {"name": "八王子", "code": "44112"}, "temps": ["33", "35", "24", "36"]}
        ]
      }
    ]
  }
]`

func newServer(t *testing.T, body string) (*httptest.Server, *string) {
	t.Helper()
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &path
}

func TestDailyMax(t *testing.T) {
	srv, path := newServer(t, tokyoForecast)

	c := NewClient(Config{BaseURL: srv.URL + "/bosai/forecast/data/forecast", AreaCode: "130000", AreaName: "東京"}, srv.Client())
	v, err := c.DailyMax(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 34, v)
	assert.Equal(t, "/bosai/forecast/data/forecast/130000.json", *path)

	// Only the first day counts, the 36 belongs to tomorrow.
	c = NewClient(Config{BaseURL: srv.URL, AreaCode: "130000", AreaName: "八王子"}, srv.Client())
	v, err = c.DailyMax(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 35, v)
}

func TestDailyMaxErrors(t *testing.T) {
	srv, _ := newServer(t, tokyoForecast)

	_, err := NewClient(Config{BaseURL: srv.URL, AreaCode: "130000", AreaName: "大阪"}, srv.Client()).DailyMax(context.Background())
	assert.ErrorIs(t, err, ErrNoForecast)

	_, err = NewClient(Config{BaseURL: srv.URL}, srv.Client()).DailyMax(context.Background())
	assert.ErrorIs(t, err, ErrNotSetUp)

	bad, _ := newServer(t, `[{"timeSeries":[{"timeDefines":["a","b"],"areas":[{"area":{"name":"東京"},"temps":["x","1"]}]}]}]`)
	_, err = NewClient(Config{BaseURL: bad.URL, AreaCode: "1", AreaName: "東京"}, bad.Client()).DailyMax(context.Background())
	assert.ErrorIs(t, err, ErrBadForecast)

	empty, _ := newServer(t, `[]`)
	_, err = NewClient(Config{BaseURL: empty.URL, AreaCode: "1", AreaName: "東京"}, empty.Client()).DailyMax(context.Background())
	assert.ErrorIs(t, err, ErrBadForecast)
}
