// Package metrics defines the Prometheus metrics of the development inventory API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "etalase"

// InventoryMutationsTotal counts inventory mutations.
// Labels:
//   - action: created, increased, decreased, deleted
//   - result: ok, rejected, error
var InventoryMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_mutations_total",
		Help:      "Total number of inventory mutations, by action and result.",
	},
	[]string{"action", "result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: ok or rejected
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
