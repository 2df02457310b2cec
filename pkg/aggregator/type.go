package aggregator

import (
	"context"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
)

// BackfillDays is how far back Backfill looks for missing scores.
const BackfillDays = 30

type Store interface {
	LatestAirconSettingBefore(ctx context.Context, t time.Time) (climatedb.AirconSettingRow, error)
	AirconSettingsBetween(ctx context.Context, from, to time.Time) ([]climatedb.AirconSettingRow, error)
	HasIntensityScore(ctx context.Context, date string) (bool, error)
	InsertIntensityScore(ctx context.Context, date string, score float64) error
	IntensityScores(ctx context.Context, from, to string) ([]climatedb.IntensityScore, error)
	DeleteRawBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Comparison lines today's running score up against earlier days.
// Missing days are 0.
type Comparison struct {
	TwoWeeksAgo float64 `json:"two_weeks_ago"`
	LastWeek    float64 `json:"last_week"`
	Yesterday   float64 `json:"yesterday"`
	Today       float64 `json:"today"`
}
