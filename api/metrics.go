package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	calculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "comp_engine",
		Subsystem: "api",
		Name:      "calculations_total",
		Help:      "Compensation calculations performed, by payment mode and outcome.",
	}, []string{"mode", "outcome"})

	launchesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "comp_engine",
		Subsystem: "api",
		Name:      "launches_created_total",
		Help:      "Launch records persisted.",
	})

	reconcileRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "comp_engine",
		Subsystem: "api",
		Name:      "reconcile_runs_total",
		Help:      "History reconciliation passes performed for listings and summaries.",
	})
)

func init() {
	prometheus.MustRegister(calculationsTotal, launchesCreatedTotal, reconcileRunsTotal)
}

func recordCalculation(taskMode bool, err error) {
	mode := "activity"
	if taskMode {
		mode = "task"
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	calculationsTotal.WithLabelValues(mode, outcome).Inc()
}
