// Package metrics exposes Prometheus counters for the allocation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsTotal counts successful ledger reservations by operation type.
	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrotrace_reservations_total",
		Help: "Successful lot reservations.",
	}, []string{"operation"})

	// ReleasesTotal counts ledger releases (reversals) by operation type.
	ReleasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrotrace_releases_total",
		Help: "Lot reservation releases.",
	}, []string{"operation"})

	// InsufficientTotal counts reservations rejected for insufficient balance —
	// the race-safe over-allocation path.
	InsufficientTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agrotrace_insufficient_quantity_total",
		Help: "Reservations rejected because the lot balance was insufficient.",
	})

	// MovementsTotal counts recorded physical movements by type.
	MovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agrotrace_movements_total",
		Help: "Physical lot movements recorded.",
	}, []string{"type"})
)
