package sampler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	samplesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aqwatch_sampler_samples_stored_total",
		Help: "Total number of live samples inserted into the sink.",
	})
	duplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aqwatch_sampler_duplicates_skipped_total",
		Help: "Total number of cycles skipped because the epoch timestamp was already stored.",
	})
	cyclesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aqwatch_sampler_cycles_failed_total",
		Help: "Total number of cycles that failed on fetch, payload or sink errors.",
	})
)
