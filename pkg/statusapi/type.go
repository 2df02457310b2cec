package statusapi

import (
	"context"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/aggregator"
	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
)

const (
	defaultHistoryDays = aggregator.BackfillDays
	maxHistoryDays     = 366
)

type ReportSource interface {
	LatestCycleReport(ctx context.Context) (time.Time, []byte, error)
}

type IntensitySource interface {
	Compare(ctx context.Context, now time.Time) (aggregator.Comparison, error)
	History(ctx context.Context, now time.Time, days int) ([]climatedb.IntensityScore, error)
}
