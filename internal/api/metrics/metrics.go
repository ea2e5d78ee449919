// Package metrics defines and registers the Prometheus metrics for the
// users-manager API surface.
//
// Metrics register themselves with the default Prometheus registry via
// promauto at package load; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// RegistrationsTotal counts completed registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successfully registered profiles.",
	},
)

// RegistrationDuplicatesTotal counts registrations rejected for credential
// collisions.
// Label:
//   - kind: which credential collided ("email", "username", "both")
var RegistrationDuplicatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_duplicates_total",
		Help:      "Total number of registrations rejected as duplicate credentials.",
	},
	[]string{"kind"},
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "no_match", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// ProfileOpsTotal counts mutating profile operations that reached the store.
// Label:
//   - op: "update" or "delete"
var ProfileOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_ops_total",
		Help:      "Total number of profile update/delete operations executed.",
	},
	[]string{"op"},
)

// Audit pipeline metrics (queue depth, drops, failures) live with the
// dispatcher in internal/infrastructure/queue.
