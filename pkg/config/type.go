package config

import "time"

// Duration is a time.Duration written as "1h30m" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ClimateControlConfig struct {
	Timezone      string `toml:"timezone"`
	LogLevel      string `toml:"log_level"`
	WakeTime      string `toml:"wake_time"`
	SleepTime     string `toml:"sleep_time"`
	RetentionDays int    `toml:"retention_days"`

	// Values that changed between tuning rounds, kept overridable.
	DwellWindow                Duration `toml:"dwell_window"`
	DehumidifyAbsoluteHumidity float64  `toml:"dehumidify_absolute_humidity"`
	InterRoomGradient          float64  `toml:"inter_room_gradient"`
	DewPointMargin             float64  `toml:"dew_point_margin"`
	CoolingPassiveMargin       float64  `toml:"cooling_passive_margin"`
	CoolingPassivePMVBound     float64  `toml:"cooling_passive_pmv_bound"`
	HeatingPassiveMargin       float64  `toml:"heating_passive_margin"`
	CirculatorHotOutdoor       float64  `toml:"circulator_hot_outdoor"`

	SensorAttempts   int      `toml:"sensor_attempts"`
	SensorRetryDelay Duration `toml:"sensor_retry_delay"`
	CommandPause     Duration `toml:"command_pause"`

	SwitchBot SwitchBotConfig `toml:"switchbot"`
	Forecast  ForecastConfig  `toml:"forecast"`
	MQTT      MQTTConfig      `toml:"mqtt"`

	// Loaded from the environment, never written to the file.
	AccessToken string `toml:"-"`
	Secret      string `toml:"-"`
}

type SwitchBotConfig struct {
	BaseURL                string `toml:"base_url"`
	CeilingDevice          string `toml:"ceiling_device"`
	FloorDevice            string `toml:"floor_device"`
	OutdoorDevice          string `toml:"outdoor_device"`
	StudyDevice            string `toml:"study_device"`
	BedroomCO2Device       string `toml:"bedroom_co2_device"`
	AirconDevice           string `toml:"aircon_device"`
	AirconSupportDevice    string `toml:"aircon_support_device"`
	CirculatorDevice       string `toml:"circulator_device"`
	PowerfulCoolCommand    string `toml:"powerful_cool_command"`
	PowerfulHeatCommand    string `toml:"powerful_heat_command"`
	CirculatorUpCommand    string `toml:"circulator_up_command"`
	CirculatorDownCommand  string `toml:"circulator_down_command"`
	CirculatorPowerCommand string `toml:"circulator_power_command"`
}

type ForecastConfig struct {
	BaseURL  string `toml:"base_url"`
	AreaCode string `toml:"area_code"`
	AreaName string `toml:"area_name"`
}

type MQTTConfig struct {
	// Publishing is off when Broker is empty.
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"client_id"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type StatusAPIConfig struct {
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
	// How often the database is polled for a new cycle.
	PollInterval Duration `toml:"poll_interval"`
	// Day boundaries of the intensity scores.
	Timezone string `toml:"timezone"`
	LogLevel string `toml:"log_level"`
}

type CycleWatcherConfig struct {
	StatusAPIHost string `toml:"status_api_host"`
	TLSEnabled    bool   `toml:"tls_enabled"`
	LogLevel      string `toml:"log_level"`
}
