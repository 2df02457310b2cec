package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/aircon"
	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
	log "github.com/sirupsen/logrus"
)

// Aggregator turns the aircon setting history into daily intensity scores.
// Days are calendar days in loc.
type Aggregator struct {
	store Store
	loc   *time.Location
}

func New(store Store, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{store: store, loc: loc}
}

// roundToDayStart returns midnight of t's day in loc
func roundToDayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// getDayEnd returns the start of the following day
func getDayEnd(dayStart time.Time) time.Time {
	return dayStart.AddDate(0, 0, 1)
}

func (a *Aggregator) dateKey(t time.Time) string {
	return t.In(a.loc).Format(climatedb.DateLayout)
}

// DailyIntensity sums intensity × seconds in effect over the day containing
// day, up to until when that falls inside the day.
func (a *Aggregator) DailyIntensity(ctx context.Context, day, until time.Time) (float64, error) {
	start := roundToDayStart(day, a.loc)
	end := getDayEnd(start)
	if until.Before(end) {
		end = until
	}
	if !end.After(start) {
		return 0, nil
	}

	rows, err := a.store.AirconSettingsBetween(ctx, start, end)
	if err != nil {
		return 0, err
	}
	prev, err := a.store.LatestAirconSettingBefore(ctx, start)
	switch {
	case errors.Is(err, climatedb.ErrNoHistory):
	case err != nil:
		return 0, err
	default:
		// Carried over from the previous day.
		prev.CreatedAt = start
		rows = append([]climatedb.AirconSettingRow{prev}, rows...)
	}

	total := 0.0
	for i, row := range rows {
		next := end
		if i+1 < len(rows) {
			next = rows[i+1].CreatedAt
		}
		if !row.Known {
			continue
		}
		total += float64(aircon.Intensity(row.Setting)) * next.Sub(row.CreatedAt).Seconds()
	}
	return total, nil
}

func (a *Aggregator) registerDay(ctx context.Context, day time.Time) (bool, error) {
	date := a.dateKey(day)
	exists, err := a.store.HasIntensityScore(ctx, date)
	if err != nil || exists {
		return false, err
	}
	score, err := a.DailyIntensity(ctx, day, getDayEnd(roundToDayStart(day, a.loc)))
	if err != nil {
		return false, fmt.Errorf("intensity for %s: %w", date, err)
	}
	if err := a.store.InsertIntensityScore(ctx, date, score); err != nil {
		return false, err
	}
	log.WithFields(log.Fields{"date": date, "score": score}).Info("registered aircon intensity score")
	return true, nil
}

// RegisterYesterday stores yesterday's score unless it already exists.
func (a *Aggregator) RegisterYesterday(ctx context.Context, now time.Time) (bool, error) {
	return a.registerDay(ctx, roundToDayStart(now, a.loc).AddDate(0, 0, -1))
}

// Backfill registers every missing score of the last days days, today excluded.
func (a *Aggregator) Backfill(ctx context.Context, now time.Time, days int) (int, error) {
	today := roundToDayStart(now, a.loc)
	registered := 0
	for i := days; i >= 1; i-- {
		ok, err := a.registerDay(ctx, today.AddDate(0, 0, -i))
		if err != nil {
			return registered, err
		}
		if ok {
			registered++
		}
	}
	return registered, nil
}

// Cleanup removes raw rows older than retentionDays. Nothing is removed
// until yesterday's score exists, so history is never dropped unaggregated.
func (a *Aggregator) Cleanup(ctx context.Context, now time.Time, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	today := roundToDayStart(now, a.loc)
	exists, err := a.store.HasIntensityScore(ctx, a.dateKey(today.AddDate(0, 0, -1)))
	if err != nil || !exists {
		return 0, err
	}
	cutoff := today.AddDate(0, 0, -retentionDays)
	n, err := a.store.DeleteRawBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.WithFields(log.Fields{"cutoff": cutoff.Format(time.RFC3339), "rows": n}).Info("cleaned up old data")
	}
	return n, nil
}

// Compare returns stored scores for two weeks ago, last week and yesterday
// next to today's running score.
func (a *Aggregator) Compare(ctx context.Context, now time.Time) (Comparison, error) {
	today := roundToDayStart(now, a.loc)
	twoWeeks := today.AddDate(0, 0, -14)

	scores, err := a.store.IntensityScores(ctx, a.dateKey(twoWeeks), a.dateKey(today.AddDate(0, 0, -1)))
	if err != nil {
		return Comparison{}, err
	}
	byDate := make(map[string]float64, len(scores))
	for _, s := range scores {
		byDate[s.Date] = s.Score
	}

	running, err := a.DailyIntensity(ctx, now, now)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		TwoWeeksAgo: byDate[a.dateKey(twoWeeks)],
		LastWeek:    byDate[a.dateKey(today.AddDate(0, 0, -7))],
		Yesterday:   byDate[a.dateKey(today.AddDate(0, 0, -1))],
		Today:       running,
	}, nil
}

// History returns the stored scores of the last days before today.
func (a *Aggregator) History(ctx context.Context, now time.Time, days int) ([]climatedb.IntensityScore, error) {
	today := roundToDayStart(now, a.loc)
	return a.store.IntensityScores(ctx, a.dateKey(today.AddDate(0, 0, -days)), a.dateKey(today.AddDate(0, 0, -1)))
}
