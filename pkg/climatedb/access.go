package climatedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/types"
)

// RecordCycle writes every row of a cycle in one transaction.
func (s *Store) RecordCycle(ctx context.Context, rec CycleRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts := rec.Timestamp.Unix()
	for _, r := range rec.Readings {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO temperatures (timestamp, location, temperature) VALUES (?, ?, ?)",
			ts, r.Location.String(), r.Temperature,
		); err != nil {
			return fmt.Errorf("insert temperature: %w", err)
		}
		if r.Location == types.LocationOutdoor {
			// Outdoor humidity is not part of the indoor record.
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO humidities (timestamp, location, humidity) VALUES (?, ?, ?)",
			ts, r.Location.String(), r.Humidity,
		); err != nil {
			return fmt.Errorf("insert humidity: %w", err)
		}
	}

	if rec.CO2 != nil {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO co2_levels (timestamp, location, co2) VALUES (?, ?, ?)",
			ts, rec.CO2.Location.String(), rec.CO2.CO2,
		); err != nil {
			return fmt.Errorf("insert co2: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO surface_temperatures (timestamp, wall, ceiling, floor) VALUES (?, ?, ?, ?)",
		ts, rec.Surfaces.Wall, rec.Surfaces.Ceiling, rec.Surfaces.Floor,
	); err != nil {
		return fmt.Errorf("insert surfaces: %w", err)
	}

	c := rec.Comfort
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO comfort_results "+
			"(timestamp, pmv, ppd, met, clo, air, mean_radiant, dry_bulb, humidity) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		ts, c.PMV, c.PPD, c.Met, c.Clo, c.Air, c.MeanRadiant, c.DryBulb, c.Humidity,
	); err != nil {
		return fmt.Errorf("insert comfort: %w", err)
	}

	if rec.Aircon != nil {
		if err := insertAirconSetting(ctx, tx, ts, *rec.Aircon); err != nil {
			return err
		}
	}
	if rec.Circulator != nil {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO circulator_settings (created_at, power_id, fan_speed) VALUES (?, ?, ?)",
			ts, rec.Circulator.Power.ID(), rec.Circulator.FanSpeed,
		); err != nil {
			return fmt.Errorf("insert circulator setting: %w", err)
		}
	}
	if rec.Report != nil {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO cycle_reports (timestamp, report) VALUES (?, ?)",
			ts, string(rec.Report),
		); err != nil {
			return fmt.Errorf("insert cycle report: %w", err)
		}
	}
	return tx.Commit()
}

// LatestCycleReport returns the newest stored report or ErrNoHistory.
func (s *Store) LatestCycleReport(ctx context.Context) (time.Time, []byte, error) {
	var (
		ts     int64
		report string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT timestamp, report FROM cycle_reports ORDER BY timestamp DESC, id DESC LIMIT 1",
	).Scan(&ts, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil, ErrNoHistory
	}
	if err != nil {
		return time.Time{}, nil, err
	}
	return time.Unix(ts, 0), []byte(report), nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAirconSetting(ctx context.Context, db execer, ts int64, a types.AirconSetting) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO aircon_settings "+
			"(created_at, temperature, mode_id, fan_speed_id, power_id, forced) "+
			"VALUES (?, ?, ?, ?, ?, ?)",
		ts, a.Temperature, a.Mode.ID(), a.FanSpeed.ID(), a.Power.ID(), a.ForcedFan,
	)
	if err != nil {
		return fmt.Errorf("insert aircon setting: %w", err)
	}
	return nil
}

// InsertAirconSetting stores a setting outside of a full cycle.
func (s *Store) InsertAirconSetting(ctx context.Context, at time.Time, a types.AirconSetting) error {
	return insertAirconSetting(ctx, s.db, at.Unix(), a)
}

const airconColumns = "id, created_at, temperature, mode_id, fan_speed_id, power_id, forced"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAirconSetting(sc rowScanner) (AirconSettingRow, error) {
	var (
		row                  AirconSettingRow
		createdAt            int64
		temp                 int
		modeID, fanID, power string
		forced               bool
	)
	if err := sc.Scan(&row.ID, &createdAt, &temp, &modeID, &fanID, &power, &forced); err != nil {
		return AirconSettingRow{}, err
	}
	row.CreatedAt = time.Unix(createdAt, 0)

	mode, errMode := types.AirconModeByID(modeID)
	fan, errFan := types.AirconFanSpeedByID(fanID)
	pw, errPower := types.PowerByID(power)
	if err := errors.Join(errMode, errFan, errPower); err != nil {
		return row, nil
	}
	setting, err := types.NewAirconSetting(temp, mode, fan, pw, forced)
	if err != nil {
		return row, nil
	}
	row.Setting = setting
	row.Known = true
	return row, nil
}

// LatestAirconSetting returns the newest stored setting or ErrNoHistory.
func (s *Store) LatestAirconSetting(ctx context.Context) (AirconSettingRow, error) {
	row, err := scanAirconSetting(s.db.QueryRowContext(ctx,
		"SELECT "+airconColumns+" FROM aircon_settings ORDER BY created_at DESC, id DESC LIMIT 1"))
	if errors.Is(err, sql.ErrNoRows) {
		return AirconSettingRow{}, ErrNoHistory
	}
	return row, err
}

// LatestAirconSettingBefore returns the setting in effect at t, or ErrNoHistory.
func (s *Store) LatestAirconSettingBefore(ctx context.Context, t time.Time) (AirconSettingRow, error) {
	row, err := scanAirconSetting(s.db.QueryRowContext(ctx,
		"SELECT "+airconColumns+" FROM aircon_settings WHERE created_at < ? "+
			"ORDER BY created_at DESC, id DESC LIMIT 1", t.Unix()))
	if errors.Is(err, sql.ErrNoRows) {
		return AirconSettingRow{}, ErrNoHistory
	}
	return row, err
}

// AirconSettingsBetween returns settings created in [from, to), oldest first.
func (s *Store) AirconSettingsBetween(ctx context.Context, from, to time.Time) ([]AirconSettingRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+airconColumns+" FROM aircon_settings WHERE created_at >= ? AND created_at < ? "+
			"ORDER BY created_at ASC, id ASC", from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AirconSettingRow
	for rows.Next() {
		row, err := scanAirconSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LatestCirculatorSetting returns the newest stored circulator state or ErrNoHistory.
func (s *Store) LatestCirculatorSetting(ctx context.Context) (types.CirculatorSetting, error) {
	var (
		power string
		speed int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT power_id, fan_speed FROM circulator_settings ORDER BY created_at DESC, id DESC LIMIT 1",
	).Scan(&power, &speed)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CirculatorSetting{}, ErrNoHistory
	}
	if err != nil {
		return types.CirculatorSetting{}, err
	}
	pw, err := types.PowerByID(power)
	if err != nil {
		return types.CirculatorSetting{}, err
	}
	return types.NewCirculatorSetting(pw, speed)
}

// DecisionContext loads what the previous cycles left behind. Missing or
// unreadable history yields a context the stabilizer treats as unknown.
func (s *Store) DecisionContext(ctx context.Context) (types.DecisionContext, error) {
	var dc types.DecisionContext

	row, err := s.LatestAirconSetting(ctx)
	switch {
	case errors.Is(err, ErrNoHistory):
	case err != nil:
		return dc, err
	case row.Known:
		dc.AirconKnown = true
		dc.Aircon = row.Setting
		dc.AirconLastChange = row.CreatedAt
	}

	circ, err := s.LatestCirculatorSetting(ctx)
	switch {
	case errors.Is(err, ErrNoHistory):
		dc.Circulator = types.CirculatorSetting{Power: types.PowerOff}
	case err != nil:
		return dc, err
	default:
		dc.Circulator = circ
	}
	return dc, nil
}

// DailyMaxTemperature returns the stored forecast for date, if any.
func (s *Store) DailyMaxTemperature(ctx context.Context, date string) (int, bool, error) {
	var v int
	err := s.db.QueryRowContext(ctx,
		"SELECT max_temperature FROM daily_max_temperatures WHERE date = ?", date,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *Store) InsertDailyMaxTemperature(ctx context.Context, date string, v int) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO daily_max_temperatures (date, max_temperature) VALUES (?, ?)",
		date, v,
	)
	return err
}

func (s *Store) HasIntensityScore(ctx context.Context, date string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM aircon_intensity_scores WHERE date = ?", date,
	).Scan(&n)
	return n > 0, err
}

func (s *Store) InsertIntensityScore(ctx context.Context, date string, score float64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO aircon_intensity_scores (date, score) VALUES (?, ?)",
		date, score,
	)
	return err
}

// IntensityScores lists scores for dates in [from, to], oldest first.
func (s *Store) IntensityScores(ctx context.Context, from, to string) ([]IntensityScore, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date, score FROM aircon_intensity_scores WHERE date >= ? AND date <= ? ORDER BY date ASC",
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IntensityScore
	for rows.Next() {
		var sc IntensityScore
		if err := rows.Scan(&sc.Date, &sc.Score); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

var rawTables = []string{
	"temperatures",
	"humidities",
	"co2_levels",
	"surface_temperatures",
	"comfort_results",
	"cycle_reports",
}

// DeleteRawBefore removes raw rows older than cutoff. The newest aircon and
// circulator rows always survive since they seed the next cycle.
func (s *Store) DeleteRawBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var total int64
	exec := func(query string) error {
		res, err := tx.ExecContext(ctx, query, cutoff.Unix())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		total += n
		return err
	}

	for _, table := range rawTables {
		if err := exec("DELETE FROM " + table + " WHERE timestamp < ?"); err != nil {
			return 0, fmt.Errorf("cleanup %s: %w", table, err)
		}
	}
	for _, table := range []string{"aircon_settings", "circulator_settings"} {
		q := "DELETE FROM " + table + " WHERE created_at < ? AND id <> " +
			"(SELECT id FROM " + table + " ORDER BY created_at DESC, id DESC LIMIT 1)"
		if err := exec(q); err != nil {
			return 0, fmt.Errorf("cleanup %s: %w", table, err)
		}
	}
	return total, tx.Commit()
}
