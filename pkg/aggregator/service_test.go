package aggregator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
	"github.com/NotCoffee418/home_climate_control/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

func at(day, hour int) time.Time {
	return time.Date(2024, 7, day, hour, 0, 0, 0, jst)
}

func seededStore(t *testing.T) *climatedb.Store {
	t.Helper()
	s, err := climatedb.Open(filepath.Join(t.TempDir(), "climate.db"))
	require.NoError(t, err)
	s.Migrate()
	t.Cleanup(func() { s.Close() })

	off, err := types.NewAirconSetting(28, types.AirconModeCool, types.FanSpeedLow, types.PowerOff, false)
	require.NoError(t, err)

	ctx := context.Background()
	// Scores: cool/26/low 7, fan/28/low 2, powerful cool 11, off 0.
	require.NoError(t, s.InsertAirconSetting(ctx, at(9, 22), types.MustAirconSetting(26, types.AirconModeCool, types.FanSpeedLow, types.PowerOn)))
	require.NoError(t, s.InsertAirconSetting(ctx, at(10, 6), types.MustAirconSetting(28, types.AirconModeFan, types.FanSpeedLow, types.PowerOn)))
	require.NoError(t, s.InsertAirconSetting(ctx, at(10, 12), types.MustAirconSetting(22, types.AirconModePowerfulCool, types.FanSpeedAuto, types.PowerOn)))
	require.NoError(t, s.InsertAirconSetting(ctx, at(10, 18), off))
	return s
}

const hour = 3600.0

func TestRoundToDayStart(t *testing.T) {
	// 23:30 UTC on the 9th is already the 10th in Tokyo.
	got := roundToDayStart(time.Date(2024, 7, 9, 23, 30, 0, 0, time.UTC), jst)
	assert.True(t, at(10, 0).Equal(got))
	assert.True(t, at(11, 0).Equal(getDayEnd(got)))
}

func TestDailyIntensity(t *testing.T) {
	a := New(seededStore(t), jst)
	ctx := context.Background()

	full, err := a.DailyIntensity(ctx, at(10, 15), at(11, 0))
	require.NoError(t, err)
	assert.InDelta(t, 7*6*hour+2*6*hour+11*6*hour, full, 1e-6)

	prev, err := a.DailyIntensity(ctx, at(9, 3), at(10, 0))
	require.NoError(t, err)
	assert.InDelta(t, 7*2*hour, prev, 1e-6)

	running, err := a.DailyIntensity(ctx, at(10, 9), at(10, 9))
	require.NoError(t, err)
	assert.InDelta(t, 7*6*hour+2*3*hour, running, 1e-6)

	// Off all day after the last row.
	quiet, err := a.DailyIntensity(ctx, at(11, 12), at(12, 0))
	require.NoError(t, err)
	assert.Zero(t, quiet)

	none, err := a.DailyIntensity(ctx, at(1, 12), at(2, 0))
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestRegisterYesterday(t *testing.T) {
	s := seededStore(t)
	a := New(s, jst)
	ctx := context.Background()

	ok, err := a.RegisterYesterday(ctx, at(11, 0).Add(5*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.RegisterYesterday(ctx, at(11, 1))
	require.NoError(t, err)
	assert.False(t, ok)

	scores, err := s.IntensityScores(ctx, "2024-07-10", "2024-07-10")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.InDelta(t, 20*6*hour, scores[0].Score, 1e-6)
}

func TestBackfillAndCompare(t *testing.T) {
	s := seededStore(t)
	a := New(s, jst)
	ctx := context.Background()
	now := at(17, 9)

	n, err := a.Backfill(ctx, now, BackfillDays)
	require.NoError(t, err)
	assert.Equal(t, BackfillDays, n)

	n, err = a.Backfill(ctx, now, BackfillDays)
	require.NoError(t, err)
	assert.Zero(t, n)

	cmp, err := a.Compare(ctx, now)
	require.NoError(t, err)
	assert.InDelta(t, 20*6*hour, cmp.LastWeek, 1e-6)
	assert.Zero(t, cmp.TwoWeeksAgo)
	assert.Zero(t, cmp.Yesterday)
	assert.Zero(t, cmp.Today)

	hist, err := a.History(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, hist, 10)
	assert.Equal(t, "2024-07-07", hist[0].Date)
	assert.Equal(t, "2024-07-16", hist[9].Date)
	assert.InDelta(t, 20*6*hour, hist[3].Score, 1e-6)
}

func TestCleanupWaitsForScores(t *testing.T) {
	s := seededStore(t)
	a := New(s, jst)
	ctx := context.Background()
	now := at(11, 1)

	n, err := a.Cleanup(ctx, now, 365)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = a.RegisterYesterday(ctx, now)
	require.NoError(t, err)
	// Every row is younger than the retention window.
	n, err = a.Cleanup(ctx, now, 365)
	require.NoError(t, err)
	assert.Zero(t, n)

	// A one-day window only reaches the setting from the 9th.
	n, err = a.Cleanup(ctx, now, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
