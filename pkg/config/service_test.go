package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(AccessTokenEnv, "")
	t.Setenv(SecretEnv, "")

	require.NoError(t, LoadClimateControlConfig(dir))
	assert.FileExists(t, filepath.Join(dir, ClimateControlFile))

	cfg := ActiveClimateControlConfig
	assert.Equal(t, time.Hour, cfg.DwellWindow.Duration)
	assert.Equal(t, 13.0, cfg.DehumidifyAbsoluteHumidity)
	assert.Equal(t, 3, cfg.SensorAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.CommandPause.Duration)

	// Reading the written file back gives the same values.
	require.NoError(t, LoadClimateControlConfig(dir))
	assert.Equal(t, cfg.SensorRetryDelay, ActiveClimateControlConfig.SensorRetryDelay)
	assert.Equal(t, cfg.SwitchBot, ActiveClimateControlConfig.SwitchBot)
}

func TestLoadOverridesAndSecrets(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(AccessTokenEnv, "")
	t.Setenv(SecretEnv, "")
	os.Unsetenv(AccessTokenEnv)
	os.Unsetenv(SecretEnv)

	toml := `
timezone = "Asia/Tokyo"
log_level = "debug"
wake_time = "06:30"
sleep_time = "23:00"
dwell_window = "2h"
dehumidify_absolute_humidity = 12.5
sensor_attempts = 5

[switchbot]
ceiling_device = "C1"
floor_device = "F1"
outdoor_device = "O1"
study_device = "S1"
aircon_device = "A1"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClimateControlFile), []byte(toml), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SWITCHBOT_ACCESS_TOKEN=token\nSWITCHBOT_SECRET=secret\n"), 0600))

	require.NoError(t, LoadClimateControlConfig(dir))
	cfg := ActiveClimateControlConfig
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2*time.Hour, cfg.DwellWindow.Duration)
	assert.Equal(t, 12.5, cfg.AirconThresholds().DehumidifyAbsoluteHumidity)
	// Keys missing from the file keep their defaults.
	assert.Equal(t, 0.3, cfg.AirconThresholds().CoolingPassivePMVBound)
	assert.Equal(t, "token", cfg.AccessToken)

	wake, sleep := cfg.Schedule()
	assert.Equal(t, "06:30", wake.String())
	assert.Equal(t, "23:00", sleep.String())
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())

	sb := cfg.SwitchBotClientConfig()
	assert.Equal(t, 5, sb.Attempts)
	assert.Equal(t, "F1", sb.Sensors[types.LocationFloor])
	_, hasCO2 := sb.Sensors[types.LocationBedroom]
	assert.False(t, hasCO2)
}

func TestValidate(t *testing.T) {
	valid := func() *ClimateControlConfig {
		c := DefaultClimateControlConfig()
		c.AccessToken, c.Secret = "t", "s"
		c.SwitchBot.CeilingDevice = "c"
		c.SwitchBot.FloorDevice = "f"
		c.SwitchBot.OutdoorDevice = "o"
		c.SwitchBot.StudyDevice = "s"
		c.SwitchBot.AirconDevice = "a"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *ClimateControlConfig)
	}{
		{"bad timezone", func(c *ClimateControlConfig) { c.Timezone = "Mars/Olympus" }},
		{"bad wake time", func(c *ClimateControlConfig) { c.WakeTime = "25:00" }},
		{"zero dwell", func(c *ClimateControlConfig) { c.DwellWindow = Duration{} }},
		{"no attempts", func(c *ClimateControlConfig) { c.SensorAttempts = 0 }},
		{"missing secret", func(c *ClimateControlConfig) { c.Secret = "" }},
		{"missing floor device", func(c *ClimateControlConfig) { c.SwitchBot.FloorDevice = "" }},
		{"mqtt without topic", func(c *ClimateControlConfig) { c.MQTT.Broker = "tcp://localhost:1883"; c.MQTT.Topic = "" }},
		{"bad log level", func(c *ClimateControlConfig) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestOtherConfigs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadStatusAPIConfig(dir))
	assert.Equal(t, 9040, ActiveStatusAPIConfig.ListenPort)
	assert.Equal(t, 10*time.Second, ActiveStatusAPIConfig.PollInterval.Duration)
	assert.Equal(t, "Asia/Tokyo", ActiveStatusAPIConfig.Location().String())

	require.NoError(t, LoadCycleWatcherConfig(dir))
	assert.Equal(t, "localhost:9040", ActiveCycleWatcherConfig.StatusAPIHost)
	assert.FileExists(t, filepath.Join(dir, CycleWatcherFile))
}
