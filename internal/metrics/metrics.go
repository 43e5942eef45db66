package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

var (
	readingsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "home_twin_readings_generated_total",
		Help: "Readings produced by the synthesizer, by fault status.",
	}, []string{"status"})

	totalLoad = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "home_twin_total_load_kw",
		Help: "Total load of the most recent reading in kW.",
	})

	price = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "home_twin_price",
		Help: "Tariff of the most recent reading.",
	})

	historyLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "home_twin_history_length",
		Help: "Number of readings held in the rolling history.",
	})

	sinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "home_twin_sink_errors_total",
		Help: "Failed deliveries of a reading to a sink.",
	}, []string{"sink"})

	readingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "home_twin_readings_ingested_total",
		Help: "Readings received by the ingestor, by outcome.",
	}, []string{"outcome"})
)

// ObserveReading records a freshly generated reading and the history size after it.
func ObserveReading(r domain.Reading, historyLen int) {
	readingsGenerated.WithLabelValues(string(r.FaultStatus)).Inc()
	totalLoad.Set(r.TotalLoad)
	price.Set(r.Price)
	historyLength.Set(float64(historyLen))
}

func SinkError(sink string) { sinkErrors.WithLabelValues(sink).Inc() }

func Ingested(ok bool) {
	if ok {
		readingsIngested.WithLabelValues("stored").Inc()
		return
	}
	readingsIngested.WithLabelValues("failed").Inc()
}
