// Package metrics exports the latest cycle report as prometheus gauges.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry *prometheus.Registry

	temperature    *prometheus.GaugeVec
	humidity       *prometheus.GaugeVec
	co2            prometheus.Gauge
	dailyMax       prometheus.Gauge
	pmv            prometheus.Gauge
	ppd            prometheus.Gauge
	meanRadiant    prometheus.Gauge
	absHumidity    prometheus.Gauge
	dewPoint       prometheus.Gauge
	gradient       *prometheus.GaugeVec
	airconTarget   prometheus.Gauge
	airconState    *prometheus.GaugeVec
	airconSent     prometheus.Counter
	circulatorFan  prometheus.Gauge
	lastCycle      prometheus.Gauge
	reportFailures prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hcc_temperature_celsius",
			Help: "Temperature per sensor location.",
		}, []string{"location"}),
		humidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hcc_relative_humidity_percent",
			Help: "Relative humidity per sensor location.",
		}, []string{"location"}),
		co2: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_bedroom_co2_ppm",
			Help: "Bedroom CO2 concentration.",
		}),
		dailyMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_forecast_daily_max_celsius",
			Help: "Forecast maximum temperature for today.",
		}),
		pmv: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_pmv",
			Help: "Predicted mean vote of the last cycle.",
		}),
		ppd: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_ppd_percent",
			Help: "Predicted percentage dissatisfied of the last cycle.",
		}),
		meanRadiant: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_mean_radiant_celsius",
			Help: "Estimated mean radiant temperature.",
		}),
		absHumidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_absolute_humidity_grams_per_cubic_meter",
			Help: "Indoor absolute humidity.",
		}),
		dewPoint: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_dew_point_celsius",
			Help: "Indoor dew point.",
		}),
		gradient: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hcc_gradient_celsius",
			Help: "Temperature gradients between zones.",
		}, []string{"kind"}),
		airconTarget: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_aircon_target_celsius",
			Help: "Target temperature of the last aircon verdict.",
		}),
		airconState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hcc_aircon_state",
			Help: "Last aircon verdict, 1 for the active combination.",
		}, []string{"mode", "fan_speed", "power", "action"}),
		airconSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hcc_aircon_commands_observed_total",
			Help: "Cycles seen by this process that sent an aircon command.",
		}),
		circulatorFan: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_circulator_fan_speed",
			Help: "Circulator fan speed reached, 0 when off.",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hcc_last_cycle_timestamp_seconds",
			Help: "Unix time of the last cycle report.",
		}),
		reportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hcc_report_decode_failures_total",
			Help: "Cycle reports that could not be decoded.",
		}),
	}

	c.registry.MustRegister(
		c.temperature,
		c.humidity,
		c.co2,
		c.dailyMax,
		c.pmv,
		c.ppd,
		c.meanRadiant,
		c.absHumidity,
		c.dewPoint,
		c.gradient,
		c.airconTarget,
		c.airconState,
		c.airconSent,
		c.circulatorFan,
		c.lastCycle,
		c.reportFailures,
	)
	return c
}

// Update sets every gauge from a JSON cycle report.
func (c *Collector) Update(report []byte) error {
	var v reportView
	if err := json.Unmarshal(report, &v); err != nil {
		c.reportFailures.Inc()
		return fmt.Errorf("decode cycle report: %w", err)
	}

	for _, r := range v.Readings {
		c.temperature.WithLabelValues(r.Location).Set(r.Temperature)
		c.humidity.WithLabelValues(r.Location).Set(r.Humidity)
	}
	if v.CO2 != nil {
		c.co2.Set(float64(*v.CO2))
	}
	if v.DailyMax != nil {
		c.dailyMax.Set(float64(*v.DailyMax))
	}
	c.pmv.Set(v.Comfort.PMV)
	c.ppd.Set(v.Comfort.PPD)
	c.meanRadiant.Set(v.Comfort.MeanRadiant)
	c.absHumidity.Set(v.AbsoluteHumidity)
	c.dewPoint.Set(v.DewPoint)
	c.gradient.WithLabelValues("ceiling_floor").Set(v.CeilingFloorGradient)
	c.gradient.WithLabelValues("inter_room").Set(v.InterRoomGradient)

	s := v.Verdict.Setting
	c.airconTarget.Set(float64(s.Temperature))
	c.airconState.Reset()
	c.airconState.WithLabelValues(s.Mode, s.FanSpeed, s.Power, v.Verdict.Action).Set(1)
	if v.AirconSent {
		c.airconSent.Inc()
	}

	if v.Circulator.Reached.Power == "on" {
		c.circulatorFan.Set(float64(v.Circulator.Reached.FanSpeed))
	} else {
		c.circulatorFan.Set(0)
	}
	c.lastCycle.Set(float64(v.Timestamp.Unix()))
	return nil
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
