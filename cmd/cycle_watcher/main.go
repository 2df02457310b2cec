// Cycle watcher prints every cycle report the status API pushes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/NotCoffee418/home_climate_control/pkg/config"
	"github.com/NotCoffee418/home_climate_control/pkg/hccutils"
	"github.com/NotCoffee418/home_climate_control/pkg/livefeed"
	log "github.com/sirupsen/logrus"
)

// cycleSummary is what the watcher prints of a report.
type cycleSummary struct {
	Timestamp string `json:"timestamp"`
	Bedtime   bool   `json:"bedtime"`
	Readings  []struct {
		Location    string  `json:"location"`
		Temperature float64 `json:"temperature"`
		Humidity    float64 `json:"humidity"`
	} `json:"readings"`
	Comfort struct {
		PMV float64 `json:"pmv"`
		PPD float64 `json:"ppd"`
	} `json:"comfort"`
	Decision struct {
		Overrides []string `json:"overrides"`
	} `json:"decision"`
	Verdict struct {
		Action  string `json:"action"`
		Reason  string `json:"reason"`
		Setting struct {
			Temperature int    `json:"temperature"`
			Mode        string `json:"mode"`
			FanSpeed    string `json:"fan_speed"`
		} `json:"setting"`
	} `json:"verdict"`
	Circulator struct {
		Reached struct {
			Power    string `json:"power"`
			FanSpeed int    `json:"fan_speed"`
		} `json:"reached"`
	} `json:"circulator"`
}

func main() {
	configDir := flag.String("config-dir", "", "config directory (default $HCC_CONFIG_DIR or /etc/home_climate_control)")
	raw := flag.Bool("raw", false, "print the raw JSON report")
	flag.Parse()

	if err := config.LoadCycleWatcherConfig(*configDir); err != nil {
		log.Fatalf("Failed to load cycle watcher config: %v", err)
	}
	cfg := config.ActiveCycleWatcherConfig
	hccutils.ConfigureLogging(cfg.LogLevel)

	scheme := "ws"
	if cfg.TLSEnabled {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: cfg.StatusAPIHost, Path: "/ws"}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := livefeed.StartListener(ctx, livefeed.DefaultListenerConfig(u.String()), func(msg []byte) {
		if *raw {
			fmt.Println(string(msg))
			return
		}
		printSummary(msg)
	})
	if err != nil {
		log.Fatalf("Live feed stopped: %v", err)
	}
}

func printSummary(msg []byte) {
	var s cycleSummary
	if err := json.Unmarshal(msg, &s); err != nil {
		log.WithError(err).Warn("could not decode cycle report")
		return
	}

	var readings []string
	for _, r := range s.Readings {
		readings = append(readings, fmt.Sprintf("%s %.1f°C/%.0f%%", r.Location, r.Temperature, r.Humidity))
	}
	set := s.Verdict.Setting
	line := fmt.Sprintf("%s pmv=%.3f ppd=%.1f%% | %s | aircon %s %s/%d/%s (%s)",
		s.Timestamp, s.Comfort.PMV, s.Comfort.PPD, strings.Join(readings, ", "),
		s.Verdict.Action, set.Mode, set.Temperature, set.FanSpeed, s.Verdict.Reason)
	if len(s.Decision.Overrides) > 0 {
		line += " overrides=" + strings.Join(s.Decision.Overrides, ",")
	}
	line += fmt.Sprintf(" | circulator %s/%d", s.Circulator.Reached.Power, s.Circulator.Reached.FanSpeed)
	if s.Bedtime {
		line += " | bedtime"
	}
	fmt.Println(line)
}
