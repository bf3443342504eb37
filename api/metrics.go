/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Counters for the operations HR teams audit: bookings created and
  cancelled, acquisition periods materialized, days sold for pay.
  Exposed on /metrics via promhttp (see server.go).
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vacation_bookings_created_total",
		Help: "Vacation bookings created, by kind (individual or collective).",
	}, []string{"kind"})

	bookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vacation_bookings_cancelled_total",
		Help: "Vacation bookings cancelled.",
	})

	periodsMaterialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vacation_periods_materialized_total",
		Help: "Acquisition-period balances created by the generator.",
	})

	daysSold = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vacation_days_sold_total",
		Help: "Vacation days converted into pay.",
	})
)
