package forecast

const DefaultBaseURL = "https://www.jma.go.jp/bosai/forecast/data/forecast"

type Config struct {
	BaseURL  string
	AreaCode string
	// AreaName is matched against area.name in the forecast.
	AreaName string
}

type report struct {
	TimeSeries []timeSeries `json:"timeSeries"`
}

type timeSeries struct {
	TimeDefines []string     `json:"timeDefines"`
	Areas       []areaSeries `json:"areas"`
}

type areaSeries struct {
	Area struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"area"`
	Temps []string `json:"temps"`
}
