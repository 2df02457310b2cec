package switchbot

import (
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/types"
)

const (
	DefaultBaseURL = "https://api.switch-bot.com"

	commandTypeCommand   = "command"
	commandTypeCustomize = "customize"
	setAllCommand        = "setAll"
	defaultParameter     = "default"

	// statusCode in the response body for a successful call
	statusSuccess = 100
)

// Config holds everything the client needs. Device ids for the sensors are
// keyed by where the sensor is mounted.
type Config struct {
	BaseURL      string
	Token        string
	Secret       string
	Attempts     int
	RetryDelay   time.Duration
	CommandPause time.Duration

	Sensors             map[types.Location]string
	AirconDevice        string
	AirconSupportDevice string
	CirculatorDevice    string

	// Names of the learned customize commands.
	PowerfulCoolCommand    string
	PowerfulHeatCommand    string
	CirculatorUpCommand    string
	CirculatorDownCommand  string
	CirculatorPowerCommand string
}

type commandRequest struct {
	Command     string `json:"command"`
	Parameter   string `json:"parameter"`
	CommandType string `json:"commandType"`
}

type statusResponse struct {
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Body       deviceStatus `json:"body"`
}

type deviceStatus struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	CO2         *int     `json:"CO2"`
}

type commandResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}
