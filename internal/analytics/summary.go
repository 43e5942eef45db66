package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"
	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/anomaly"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

// Summary aggregates a run of readings.
type Summary struct {
	Count         int     `json:"count"`
	LatestLoad    float64 `json:"latest_load"`
	MeanLoad      float64 `json:"mean_load"`
	StdDevLoad    float64 `json:"stddev_load"`
	PeakLoad      float64 `json:"peak_load"`
	P95Load       float64 `json:"p95_load"`
	EnergyKWh     float64 `json:"energy_kwh"`
	MeanPrice     float64 `json:"mean_price"`
	ProjectedCost float64 `json:"projected_cost"`
	FaultCount    int     `json:"fault_count"`
	OccupiedShare float64 `json:"occupied_share"`
	SpikeCount    int     `json:"spike_count"`

	// MovingAverage smooths the load over SmoothingWindow readings; nil until
	// the history holds a full window.
	MovingAverage []float64 `json:"moving_average,omitempty"`
}

// SmoothingWindow is the moving-average width, one minute at the default refresh.
const SmoothingWindow = 30

var spikes = &anomaly.AnomalyDetector{Threshold: 2.0, WindowSize: 5}

// Summarize treats each reading as holding for interval when computing energy
// and cost. An empty input gives a zero Summary.
func Summarize(readings []domain.Reading, interval time.Duration) Summary {
	n := len(readings)
	if n == 0 {
		return Summary{}
	}
	hours := interval.Hours()

	loads := make([]float64, n)
	load := make([]aggregator.Point, n)
	series := make([]anomaly.Reading, n)
	energy := make([]aggregator.Point, n)
	prices := make([]aggregator.Point, n)
	cost := decimal.Zero
	var s Summary
	occupied := 0
	for i, r := range readings {
		loads[i] = r.TotalLoad
		load[i] = aggregator.Point{Value: r.TotalLoad, Timestamp: r.GeneratedAt}
		series[i] = anomaly.Reading{Consumption: r.TotalLoad}
		kwh := r.TotalLoad * hours
		energy[i] = aggregator.Point{Value: kwh, Timestamp: r.GeneratedAt}
		prices[i] = aggregator.Point{Value: r.Price, Timestamp: r.GeneratedAt}
		cost = cost.Add(decimal.NewFromFloat(kwh).Mul(decimal.NewFromFloat(r.Price)))
		if r.IsFault() {
			s.FaultCount++
		}
		if r.Occupancy {
			occupied++
		}
	}

	s.Count = n
	s.LatestLoad = readings[n-1].TotalLoad
	s.MeanLoad = stat.Mean(loads, nil)
	if n > 1 {
		s.StdDevLoad = stat.StdDev(loads, nil)
	}
	s.EnergyKWh = aggregator.Sum(energy)
	s.MeanPrice = round2(aggregator.Average(prices))
	s.ProjectedCost = cost.Round(2).InexactFloat64()
	s.OccupiedShare = float64(occupied) / float64(n)
	s.SpikeCount = len(spikes.DetectSpikes(series))
	if n >= SmoothingWindow {
		s.MovingAverage = aggregator.MovingAverage(load, SmoothingWindow)
	}

	sorted := append([]float64(nil), loads...)
	sort.Float64s(sorted)
	s.PeakLoad = sorted[n-1]
	s.P95Load = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}

// Forecast extrapolates a least-squares line through the loads for the next
// points steps. Values are floored at zero.
func Forecast(readings []domain.Reading, points int) []float64 {
	if points <= 0 {
		return nil
	}
	out := make([]float64, points)
	switch len(readings) {
	case 0:
		return out
	case 1:
		for i := range out {
			out[i] = readings[0].TotalLoad
		}
		return out
	}

	xs := make([]float64, len(readings))
	ys := make([]float64, len(readings))
	for i, r := range readings {
		xs[i] = float64(i)
		ys[i] = r.TotalLoad
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	for i := range out {
		x := float64(len(readings) + i)
		out[i] = math.Max(0, alpha+beta*x)
	}
	return out
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
