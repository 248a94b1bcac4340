package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homectl_commands_applied_total",
		Help: "Commands applied to devices, by operation and outcome.",
	}, []string{"op", "outcome"})

	devicesKnown = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "homectl_devices_known",
		Help: "Devices currently known to the bridge.",
	})

	discoveryRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homectl_discovery_runs_total",
		Help: "Discovery sweeps, by outcome.",
	}, []string{"outcome"})
)
