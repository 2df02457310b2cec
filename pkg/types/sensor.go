package types

import (
	"fmt"
	"time"
)

type Location uint8

const (
	LocationFloor Location = iota + 1
	LocationCeiling
	LocationOutdoor
	LocationStudy
	LocationBedroom
)

var locationNames = map[Location]string{
	LocationFloor:   "floor",
	LocationCeiling: "ceiling",
	LocationOutdoor: "outdoor",
	LocationStudy:   "study",
	LocationBedroom: "bedroom",
}

func (l Location) String() string {
	if n, ok := locationNames[l]; ok {
		return n
	}
	return fmt.Sprintf("location(%d)", uint8(l))
}

func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

type TemperatureHumidity struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

type CO2Reading struct {
	TemperatureHumidity
	CO2 int `json:"co2"`
}

// SensorReading is captured once per cycle and not modified afterwards.
type SensorReading struct {
	Location    Location  `json:"location"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewSensorReading(loc Location, th TemperatureHumidity, ts time.Time) SensorReading {
	return SensorReading{
		Location:    loc,
		Temperature: th.Temperature,
		Humidity:    th.Humidity,
		Timestamp:   ts,
	}
}

// DecisionContext is what the previous cycles left behind.
type DecisionContext struct {
	// AirconKnown is false when there is no usable previous aircon row.
	AirconKnown      bool
	Aircon           AirconSetting
	AirconLastChange time.Time
	Circulator       CirculatorSetting
}
