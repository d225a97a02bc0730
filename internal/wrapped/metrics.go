package wrapped

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrapped_generations_total",
			Help: "Slide generations by result",
		},
		[]string{"result"},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wrapped_generation_seconds",
			Help:    "Time spent waiting on the text generation endpoint",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
	)
)
