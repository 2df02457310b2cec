// Climate control runs one control cycle per invocation and exits.
// Schedule it with a systemd timer or cron, e.g. every 10 minutes.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/aggregator"
	"github.com/NotCoffee418/home_climate_control/pkg/aircon"
	"github.com/NotCoffee418/home_climate_control/pkg/circulator"
	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
	"github.com/NotCoffee418/home_climate_control/pkg/config"
	"github.com/NotCoffee418/home_climate_control/pkg/cycle"
	"github.com/NotCoffee418/home_climate_control/pkg/forecast"
	"github.com/NotCoffee418/home_climate_control/pkg/hccutils"
	"github.com/NotCoffee418/home_climate_control/pkg/pathing"
	"github.com/NotCoffee418/home_climate_control/pkg/publisher"
	"github.com/NotCoffee418/home_climate_control/pkg/switchbot"
	log "github.com/sirupsen/logrus"
)

// A cycle that takes longer than this is stuck on the network.
const cycleTimeout = 5 * time.Minute

func main() {
	configDir := flag.String("config-dir", "", "config directory (default $HCC_CONFIG_DIR or /etc/home_climate_control)")
	backfill := flag.Bool("backfill-intensity", false, "register missing daily intensity scores and exit")
	flag.Parse()

	if err := config.LoadClimateControlConfig(*configDir); err != nil {
		log.Fatalf("Failed to load climate control config: %v", err)
	}
	cfg := config.ActiveClimateControlConfig
	hccutils.ConfigureLogging(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := pathing.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	store, err := climatedb.Open(pathing.GetClimateDbPath())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	store.Migrate()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := aggregator.New(store, cfg.Location())
	if *backfill {
		n, err := agg.Backfill(ctx, time.Now(), aggregator.BackfillDays)
		if err != nil {
			log.Fatalf("Backfill failed after %d days: %v", n, err)
		}
		log.WithField("days", n).Info("intensity backfill done")
		return
	}

	runner, cleanup, err := newRunner(cfg, store, agg)
	if err != nil {
		log.Fatalf("Failed to set up cycle: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()
	if _, err := runner.Run(ctx); err != nil {
		// Fatal skips deferred calls.
		cancel()
		cleanup()
		store.Close()
		log.Fatalf("Cycle aborted: %v", err)
	}
}

func newRunner(cfg *config.ClimateControlConfig, store *climatedb.Store, agg *aggregator.Aggregator) (*cycle.Runner, func(), error) {
	engine, err := aircon.NewEngine(aircon.DefaultBands, cfg.AirconThresholds())
	if err != nil {
		return nil, nil, err
	}
	circ, err := circulator.NewEngine(circulator.HotOutdoorSteps, circulator.MildOutdoorSteps, cfg.CirculatorHotOutdoor)
	if err != nil {
		return nil, nil, err
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	devices := switchbot.NewClient(cfg.SwitchBotClientConfig(), httpClient)
	deps := cycle.Deps{
		Sensors:     devices,
		Aircon:      devices,
		Circulator:  devices,
		Store:       store,
		Housekeeper: agg,
	}
	if cfg.Forecast.AreaCode != "" {
		deps.Forecaster = forecast.NewClient(cfg.ForecastClientConfig(), httpClient)
	}

	cleanup := func() {}
	if cfg.MQTTEnabled() {
		pub, err := publisher.Connect(publisher.Config{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			// The report is still stored; the status API serves it.
			log.WithError(err).Warn("mqtt publishing disabled for this cycle")
		} else {
			deps.Publisher = pub
			cleanup = pub.Close
		}
	}

	wake, sleep := cfg.Schedule()
	return cycle.NewRunner(deps, cycle.Options{
		Engine:           engine,
		Stabilizer:       aircon.NewStabilizer(cfg.DwellWindow.Duration),
		CirculatorEngine: circ,
		Wake:             wake,
		Sleep:            sleep,
		Location:         cfg.Location(),
		RetentionDays:    cfg.RetentionDays,
	}), cleanup, nil
}
