package cycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/activity"
	"github.com/NotCoffee418/home_climate_control/pkg/aircon"
	"github.com/NotCoffee418/home_climate_control/pkg/circulator"
	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
	"github.com/NotCoffee418/home_climate_control/pkg/comfort"
	"github.com/NotCoffee418/home_climate_control/pkg/hccutils"
	"github.com/NotCoffee418/home_climate_control/pkg/surface"
	"github.com/NotCoffee418/home_climate_control/pkg/types"
	log "github.com/sirupsen/logrus"
)

var (
	ErrSensorRead   = fmt.Errorf("sensor read failed")
	ErrInvalidInput = fmt.Errorf("invalid cycle input")
	ErrContext      = fmt.Errorf("could not load decision context")
	ErrPersist      = fmt.Errorf("could not persist cycle")
)

// decisionSensors must all be read before anything is decided.
var decisionSensors = []types.Location{
	types.LocationCeiling,
	types.LocationFloor,
	types.LocationOutdoor,
	types.LocationStudy,
}

type Runner struct {
	deps Deps
	opts Options
}

func NewRunner(deps Deps, opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Runner{deps: deps, opts: opts}
}

// Run executes one control cycle. Nothing is sent to a device unless every
// decision sensor was read and the model accepted the readings.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	now := r.opts.Now().In(r.opts.Location)
	rep := Report{Timestamp: now}

	env := make(map[types.Location]types.TemperatureHumidity, len(decisionSensors))
	for _, loc := range decisionSensors {
		th, err := r.deps.Sensors.ReadTemperatureHumidity(ctx, loc)
		if err != nil {
			return rep, errors.Join(ErrSensorRead, err)
		}
		env[loc] = th
		rep.Readings = append(rep.Readings, types.NewSensorReading(loc, th, now))
	}
	// Readings are checked one by one, before any averaging.
	var invalid []error
	for _, loc := range decisionSensors {
		th := env[loc]
		if err := hccutils.CheckReading(th.Temperature, th.Humidity); err != nil {
			invalid = append(invalid, fmt.Errorf("%s sensor: %w", loc, err))
		}
	}
	if len(invalid) > 0 {
		return rep, errors.Join(ErrInvalidInput, errors.Join(invalid...))
	}
	ceiling, floor := env[types.LocationCeiling], env[types.LocationFloor]
	outdoor, study := env[types.LocationOutdoor], env[types.LocationStudy]

	var co2 *climatedb.CO2Level
	if r.deps.Sensors.HasSensor(types.LocationBedroom) {
		reading, err := r.deps.Sensors.ReadCO2(ctx, types.LocationBedroom)
		if err == nil {
			err = hccutils.CheckReading(reading.Temperature, reading.Humidity)
		}
		if err != nil {
			// CO2 is recorded only and never feeds a decision.
			log.WithError(err).Warn("skipping bedroom CO2 reading")
		} else {
			co2 = &climatedb.CO2Level{Location: types.LocationBedroom, CO2: reading.CO2}
			rep.CO2 = &reading.CO2
			rep.Readings = append(rep.Readings,
				types.NewSensorReading(types.LocationBedroom, reading.TemperatureHumidity, now))
		}
	}

	dctx, err := r.deps.Store.DecisionContext(ctx)
	if err != nil {
		return rep, errors.Join(ErrContext, err)
	}

	if err := r.evaluate(&rep, now, ceiling, floor, outdoor, study); err != nil {
		return rep, err
	}

	var sentAircon *types.AirconSetting
	rep.Verdict = r.opts.Stabilizer.Evaluate(rep.Decision.Setting, dctx, now)
	if rep.Verdict.Action.Sends() {
		if err := r.deps.Aircon.ApplyAircon(ctx, rep.Verdict.Setting); err != nil {
			// Left for the next cycle to reconcile.
			rep.AirconError = err.Error()
			log.WithError(err).WithField("setting", rep.Verdict.Setting.String()).Error("aircon command failed")
		} else {
			rep.AirconSent = true
			s := rep.Verdict.Setting
			sentAircon = &s
		}
	}
	log.WithFields(log.Fields{
		"action":    rep.Verdict.Action.String(),
		"setting":   rep.Verdict.Setting.String(),
		"reason":    rep.Verdict.Reason,
		"sent":      rep.AirconSent,
		"base":      baseString(rep.Decision.Base),
		"overrides": rep.Decision.Overrides,
	}).Info("aircon")

	circ := r.runCirculator(ctx, &rep, dctx.Circulator)

	if v, ok := r.dailyMax(ctx, now); ok {
		rep.DailyMax = &v
	}

	report, err := json.Marshal(rep)
	if err != nil {
		return rep, fmt.Errorf("encode report: %w", err)
	}
	if err := r.deps.Store.RecordCycle(ctx, climatedb.CycleRecord{
		Timestamp:  now,
		Readings:   rep.Readings,
		CO2:        co2,
		Surfaces:   rep.Surfaces,
		Comfort:    rep.Comfort,
		Aircon:     sentAircon,
		Circulator: &circ,
		Report:     report,
	}); err != nil {
		return rep, errors.Join(ErrPersist, err)
	}

	r.housekeeping(ctx, now)

	if r.deps.Publisher != nil {
		if err := r.deps.Publisher.Publish(ctx, rep); err != nil {
			log.WithError(err).Warn("could not publish cycle report")
		}
	}
	return rep, nil
}

// evaluate runs the model chain and fills in the decision.
func (r *Runner) evaluate(rep *Report, now time.Time, ceiling, floor, outdoor, study types.TemperatureHumidity) error {
	rep.Bedtime = activity.IsBedtime(now, r.opts.Wake, r.opts.Sleep)
	rep.Activity = activity.Estimate(outdoor.Temperature, now, rep.Bedtime)

	rep.Surfaces = surface.Compute(surface.Input{
		Outdoor: outdoor.Temperature,
		Ceiling: ceiling.Temperature,
		Floor:   floor.Temperature,
		Now:     now,
	})

	indoorRH := hccutils.Mean(ceiling.Humidity, floor.Humidity)
	res, err := comfort.Estimate(comfort.Input{
		Surfaces: rep.Surfaces,
		DryBulb:  floor.Temperature,
		Humidity: indoorRH,
		Met:      rep.Activity.Met,
		Icl:      rep.Activity.Icl,
	})
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	rep.Comfort = res

	ah, err := hccutils.AbsoluteHumidity(floor.Temperature, indoorRH)
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	dew, err := hccutils.DewPoint(hccutils.Mean(ceiling.Temperature, floor.Temperature), indoorRH)
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	rep.AbsoluteHumidity = ah
	rep.DewPoint = dew
	rep.InterRoomGradient = study.Temperature - floor.Temperature
	rep.CeilingFloorGradient = ceiling.Temperature - floor.Temperature

	log.WithFields(log.Fields{
		"ceiling":           ceiling.Temperature,
		"floor":             floor.Temperature,
		"outdoor":           outdoor.Temperature,
		"study":             study.Temperature,
		"humidity":          hccutils.Round(indoorRH, 1),
		"absolute_humidity": hccutils.Round(ah, 2),
		"dew_point":         hccutils.Round(dew, 2),
		"bedtime":           rep.Bedtime,
	}).Info("environment")
	log.WithFields(log.Fields{
		"pmv":          hccutils.Round(res.PMV, 3),
		"ppd":          hccutils.Round(res.PPD, 2),
		"met":          res.Met,
		"clo":          hccutils.Round(res.Clo, 3),
		"air":          hccutils.Round(res.Air, 3),
		"mean_radiant": hccutils.Round(res.MeanRadiant, 2),
		"wall":         hccutils.Round(res.Wall, 2),
		"ceiling":      hccutils.Round(res.Ceiling, 2),
		"floor":        hccutils.Round(res.Floor, 2),
		"operative":    hccutils.Round(res.OperativeTemperature(), 2),
	}).Info("comfort")

	decision, err := r.opts.Engine.Decide(aircon.Inputs{
		Comfort:           res,
		FloorTemperature:  floor.Temperature,
		Outdoor:           outdoor.Temperature,
		AbsoluteHumidity:  ah,
		DewPoint:          dew,
		InterRoomGradient: rep.InterRoomGradient,
	})
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}
	rep.Decision = decision
	return nil
}

// runCirculator steps the circulator toward its target and returns the
// state the device actually reached.
func (r *Runner) runCirculator(ctx context.Context, rep *Report, previous types.CirculatorSetting) types.CirculatorSetting {
	outdoor, _ := rep.Reading(types.LocationOutdoor)
	target := r.opts.CirculatorEngine.Decide(outdoor.Temperature, rep.CeilingFloorGradient, rep.Bedtime)

	rep.Circulator = CirculatorReport{
		Previous: previous,
		Target:   target,
		Commands: circulator.Plan(previous, target.FanSpeed),
	}
	reached, err := circulator.Apply(ctx, r.deps.Circulator, previous, target)
	rep.Circulator.Reached = reached
	fields := log.Fields{
		"previous": previous.String(),
		"target":   target.String(),
		"reached":  reached.String(),
		"commands": len(rep.Circulator.Commands),
	}
	if err != nil {
		rep.Circulator.Error = err.Error()
		log.WithFields(fields).WithError(err).Error("circulator command failed")
	} else {
		log.WithFields(fields).Info("circulator")
	}
	return reached
}

// dailyMax returns today's forecast maximum, fetching it once per day.
func (r *Runner) dailyMax(ctx context.Context, now time.Time) (int, bool) {
	date := now.Format(climatedb.DateLayout)
	v, ok, err := r.deps.Store.DailyMaxTemperature(ctx, date)
	if err != nil {
		log.WithError(err).Warn("could not read stored daily max temperature")
		return 0, false
	}
	if ok || r.deps.Forecaster == nil {
		return v, ok
	}

	v, err = r.deps.Forecaster.DailyMax(ctx)
	if err != nil {
		log.WithError(err).Warn("could not fetch daily max temperature")
		return 0, false
	}
	if err := r.deps.Store.InsertDailyMaxTemperature(ctx, date, v); err != nil {
		log.WithError(err).Warn("could not store daily max temperature")
	}
	log.WithFields(log.Fields{"date": date, "max_temperature": v}).Info("daily max temperature")
	return v, true
}

func (r *Runner) housekeeping(ctx context.Context, now time.Time) {
	if r.deps.Housekeeper == nil {
		return
	}
	if _, err := r.deps.Housekeeper.RegisterYesterday(ctx, now); err != nil {
		log.WithError(err).Warn("could not register yesterday's intensity score")
		return
	}
	if _, err := r.deps.Housekeeper.Cleanup(ctx, now, r.opts.RetentionDays); err != nil {
		log.WithError(err).Warn("cleanup failed")
	}
}

// baseString renders the band outcome before any override, for the audit log.
func baseString(o aircon.Outcome) string {
	return fmt.Sprintf("%s:%d:%s", o.Mode, o.Temperature, o.FanSpeed)
}
