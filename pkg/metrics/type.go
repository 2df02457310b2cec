package metrics

import "time"

// reportView is the part of a stored cycle report that is exported.
type reportView struct {
	Timestamp time.Time `json:"timestamp"`
	Readings  []struct {
		Location    string  `json:"location"`
		Temperature float64 `json:"temperature"`
		Humidity    float64 `json:"humidity"`
	} `json:"readings"`
	CO2      *int `json:"co2"`
	DailyMax *int `json:"daily_max"`
	Comfort  struct {
		PMV         float64 `json:"pmv"`
		PPD         float64 `json:"ppd"`
		MeanRadiant float64 `json:"mean_radiant"`
	} `json:"comfort"`
	AbsoluteHumidity     float64 `json:"absolute_humidity"`
	DewPoint             float64 `json:"dew_point"`
	CeilingFloorGradient float64 `json:"ceiling_floor_gradient"`
	InterRoomGradient    float64 `json:"inter_room_gradient"`
	Verdict              struct {
		Action  string `json:"action"`
		Setting struct {
			Temperature int    `json:"temperature"`
			Mode        string `json:"mode"`
			FanSpeed    string `json:"fan_speed"`
			Power       string `json:"power"`
		} `json:"setting"`
	} `json:"verdict"`
	AirconSent bool `json:"aircon_sent"`
	Circulator struct {
		Reached struct {
			Power    string `json:"power"`
			FanSpeed int    `json:"fan_speed"`
		} `json:"reached"`
	} `json:"circulator"`
}
