package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var invocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "telhawk_notify_invocations_total",
		Help: "Total notify invocations by source and result",
	},
	[]string{"source", "result"},
)
