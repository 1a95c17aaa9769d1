// Package metrics exposes Prometheus counters for the serve-mode API
// and for long-running watch sessions.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Identifications counts identification attempts by outcome:
	// "matched", "no_match", "error".
	Identifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundprint_identifications_total",
			Help: "Identification attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// LookupErrors counts failed remote fingerprint lookups.
	LookupErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soundprint_lookup_errors_total",
			Help: "Failed AcoustID lookup requests.",
		},
	)

	// HistoryHits counts lookups short-circuited by the local history.
	HistoryHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soundprint_history_hits_total",
			Help: "Lookups answered from the local recognition history.",
		},
	)

	// RecordedSeconds counts seconds of microphone audio captured.
	RecordedSeconds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "soundprint_recorded_seconds_total",
			Help: "Seconds of microphone audio captured.",
		},
	)
)

var registerOnce sync.Once

// Register installs the collectors on the default registry. Safe to
// call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Identifications, LookupErrors, HistoryHits, RecordedSeconds)
	})
}
