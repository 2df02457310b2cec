package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/home_climate_control/pkg/activity"
	"github.com/NotCoffee418/home_climate_control/pkg/aircon"
	"github.com/NotCoffee418/home_climate_control/pkg/forecast"
	"github.com/NotCoffee418/home_climate_control/pkg/pathing"
	"github.com/NotCoffee418/home_climate_control/pkg/switchbot"
	"github.com/NotCoffee418/home_climate_control/pkg/types"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	ClimateControlFile = "climate_control.toml"
	StatusAPIFile      = "status_api.toml"
	CycleWatcherFile   = "cycle_watcher.toml"

	AccessTokenEnv = "SWITCHBOT_ACCESS_TOKEN"
	SecretEnv      = "SWITCHBOT_SECRET"
)

var ErrInvalidConfig = fmt.Errorf("invalid config")

var (
	ActiveClimateControlConfig *ClimateControlConfig
	ActiveStatusAPIConfig      *StatusAPIConfig
	ActiveCycleWatcherConfig   *CycleWatcherConfig
)

func DefaultClimateControlConfig() *ClimateControlConfig {
	th := aircon.DefaultThresholds()
	return &ClimateControlConfig{
		Timezone:                   "Asia/Tokyo",
		LogLevel:                   "info",
		WakeTime:                   "06:00",
		SleepTime:                  "23:50",
		RetentionDays:              365,
		DwellWindow:                Duration{time.Hour},
		DehumidifyAbsoluteHumidity: th.DehumidifyAbsoluteHumidity,
		InterRoomGradient:          th.InterRoomGradient,
		DewPointMargin:             th.DewPointMargin,
		CoolingPassiveMargin:       th.CoolingPassiveMargin,
		CoolingPassivePMVBound:     th.CoolingPassivePMVBound,
		HeatingPassiveMargin:       th.HeatingPassiveMargin,
		CirculatorHotOutdoor:       25,
		SensorAttempts:             3,
		SensorRetryDelay:           Duration{5 * time.Second},
		CommandPause:               Duration{500 * time.Millisecond},
		SwitchBot: SwitchBotConfig{
			BaseURL:                switchbot.DefaultBaseURL,
			PowerfulCoolCommand:    "パワフル冷房",
			PowerfulHeatCommand:    "パワフル暖房",
			CirculatorUpCommand:    "風量+",
			CirculatorDownCommand:  "風量-",
			CirculatorPowerCommand: "電源",
		},
		Forecast: ForecastConfig{
			BaseURL:  forecast.DefaultBaseURL,
			AreaCode: "130000",
			AreaName: "東京",
		},
		MQTT: MQTTConfig{
			Topic:    "home_climate_control/cycle",
			ClientID: "home_climate_control",
		},
	}
}

func DefaultStatusAPIConfig() *StatusAPIConfig {
	return &StatusAPIConfig{
		ListenAddress: "0.0.0.0",
		ListenPort:    9040,
		PollInterval:  Duration{10 * time.Second},
		Timezone:      "Asia/Tokyo",
		LogLevel:      "info",
	}
}

func DefaultCycleWatcherConfig() *CycleWatcherConfig {
	return &CycleWatcherConfig{
		StatusAPIHost: "localhost:9040",
		TLSEnabled:    false,
		LogLevel:      "info",
	}
}

// loadOrCreate decodes path into cfg. When the file does not exist it is
// written from cfg, which then holds the defaults.
func loadOrCreate(path string, cfg any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfgFile, err := os.Create(path)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		log.Infof("wrote default config to %s", path)
		return toml.NewEncoder(cfgFile).Encode(cfg)
	}

	_, err := toml.DecodeFile(path, cfg)
	return err
}

// LoadClimateControlConfig reads the config and secrets from dir.
// An empty dir uses the standard config directory.
func LoadClimateControlConfig(dir string) error {
	if dir == "" {
		dir = pathing.GetConfigDir()
	}
	cfg := DefaultClimateControlConfig()
	if err := loadOrCreate(filepath.Join(dir, ClimateControlFile), cfg); err != nil {
		return err
	}
	if err := loadSecrets(dir, cfg); err != nil {
		return err
	}
	ActiveClimateControlConfig = cfg
	return nil
}

// loadSecrets reads .env from the config dir and the working directory.
// Variables already in the environment win.
func loadSecrets(dir string, cfg *ClimateControlConfig) error {
	for _, f := range []string{filepath.Join(dir, ".env"), ".env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg.AccessToken = os.Getenv(AccessTokenEnv)
	cfg.Secret = os.Getenv(SecretEnv)
	return nil
}

func LoadStatusAPIConfig(dir string) error {
	if dir == "" {
		dir = pathing.GetConfigDir()
	}
	cfg := DefaultStatusAPIConfig()
	if err := loadOrCreate(filepath.Join(dir, StatusAPIFile), cfg); err != nil {
		return err
	}
	ActiveStatusAPIConfig = cfg
	return nil
}

func LoadCycleWatcherConfig(dir string) error {
	if dir == "" {
		dir = pathing.GetConfigDir()
	}
	cfg := DefaultCycleWatcherConfig()
	if err := loadOrCreate(filepath.Join(dir, CycleWatcherFile), cfg); err != nil {
		return err
	}
	ActiveCycleWatcherConfig = cfg
	return nil
}

// Validate rejects a config no cycle could run with.
func (c *ClimateControlConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		bad("timezone %q: %v", c.Timezone, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		bad("log_level %q", c.LogLevel)
	}
	if _, err := activity.ParseClockTime(c.WakeTime); err != nil {
		bad("wake_time %q", c.WakeTime)
	}
	if _, err := activity.ParseClockTime(c.SleepTime); err != nil {
		bad("sleep_time %q", c.SleepTime)
	}
	if c.DwellWindow.Duration <= 0 {
		bad("dwell_window must be positive")
	}
	if c.DehumidifyAbsoluteHumidity <= 0 {
		bad("dehumidify_absolute_humidity must be positive")
	}
	if c.InterRoomGradient < 0 || c.CoolingPassiveMargin < 0 || c.HeatingPassiveMargin < 0 || c.DewPointMargin < 0 {
		bad("margins must not be negative")
	}
	if c.SensorAttempts < 1 {
		bad("sensor_attempts must be at least 1")
	}
	if c.SensorRetryDelay.Duration < 0 || c.CommandPause.Duration < 0 {
		bad("delays must not be negative")
	}
	if c.RetentionDays < 0 {
		bad("retention_days must not be negative")
	}
	if c.AccessToken == "" || c.Secret == "" {
		bad("%s and %s must be set", AccessTokenEnv, SecretEnv)
	}

	required := []struct{ key, value string }{
		{"ceiling_device", c.SwitchBot.CeilingDevice},
		{"floor_device", c.SwitchBot.FloorDevice},
		{"outdoor_device", c.SwitchBot.OutdoorDevice},
		{"study_device", c.SwitchBot.StudyDevice},
		{"aircon_device", c.SwitchBot.AirconDevice},
	}
	for _, r := range required {
		if r.value == "" {
			bad("switchbot.%s is required", r.key)
		}
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		bad("mqtt.topic is required when mqtt.broker is set")
	}
	return errors.Join(errs...)
}

func (c *ClimateControlConfig) Location() *time.Location {
	return loadLocation(c.Timezone)
}

func (c *StatusAPIConfig) Location() *time.Location {
	return loadLocation(c.Timezone)
}

// loadLocation falls back to UTC; Validate reports a bad name.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MQTTEnabled reports whether cycle reports are published.
func (c *ClimateControlConfig) MQTTEnabled() bool {
	return c.MQTT.Broker != ""
}

func (c *ClimateControlConfig) Schedule() (wake, sleep activity.ClockTime) {
	wake, _ = activity.ParseClockTime(c.WakeTime)
	sleep, _ = activity.ParseClockTime(c.SleepTime)
	return wake, sleep
}

func (c *ClimateControlConfig) AirconThresholds() aircon.Thresholds {
	th := aircon.DefaultThresholds()
	th.DehumidifyAbsoluteHumidity = c.DehumidifyAbsoluteHumidity
	th.InterRoomGradient = c.InterRoomGradient
	th.DewPointMargin = c.DewPointMargin
	th.CoolingPassiveMargin = c.CoolingPassiveMargin
	th.CoolingPassivePMVBound = c.CoolingPassivePMVBound
	th.HeatingPassiveMargin = c.HeatingPassiveMargin
	return th
}

func (c *ClimateControlConfig) SwitchBotClientConfig() switchbot.Config {
	sb := c.SwitchBot
	sensors := map[types.Location]string{
		types.LocationCeiling: sb.CeilingDevice,
		types.LocationFloor:   sb.FloorDevice,
		types.LocationOutdoor: sb.OutdoorDevice,
		types.LocationStudy:   sb.StudyDevice,
	}
	if sb.BedroomCO2Device != "" {
		sensors[types.LocationBedroom] = sb.BedroomCO2Device
	}
	return switchbot.Config{
		BaseURL:                sb.BaseURL,
		Token:                  c.AccessToken,
		Secret:                 c.Secret,
		Attempts:               c.SensorAttempts,
		RetryDelay:             c.SensorRetryDelay.Duration,
		CommandPause:           c.CommandPause.Duration,
		Sensors:                sensors,
		AirconDevice:           sb.AirconDevice,
		AirconSupportDevice:    sb.AirconSupportDevice,
		CirculatorDevice:       sb.CirculatorDevice,
		PowerfulCoolCommand:    sb.PowerfulCoolCommand,
		PowerfulHeatCommand:    sb.PowerfulHeatCommand,
		CirculatorUpCommand:    sb.CirculatorUpCommand,
		CirculatorDownCommand:  sb.CirculatorDownCommand,
		CirculatorPowerCommand: sb.CirculatorPowerCommand,
	}
}

func (c *ClimateControlConfig) ForecastClientConfig() forecast.Config {
	return forecast.Config{
		BaseURL:  c.Forecast.BaseURL,
		AreaCode: c.Forecast.AreaCode,
		AreaName: c.Forecast.AreaName,
	}
}
