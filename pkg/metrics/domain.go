package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersCreated = counter("orders", "created_total", "Orders created.")

	OrderTransitions = counter("orders", "transitions_total",
		"Committed order status transitions.", "from", "to")

	// OrderConflicts counts rejected mutations: invalid transitions, lost
	// claim races and stale versions.
	OrderConflicts = counter("orders", "conflicts_total",
		"Rejected order mutations by reason.", "reason")

	RealtimeClients = gauge("realtime", "clients", "Connected websocket clients.")

	RealtimeEvents = counter("realtime", "events_total",
		"Realtime events emitted by name and outcome.", "event", "outcome")

	QueueJobsProcessed = counter("queue", "jobs_processed_total",
		"Queue jobs processed by type and status.", "job_type", "status")

	QueueJobDuration = histogram("queue", "job_duration_seconds",
		"Duration of queue job processing in seconds.", prometheus.DefBuckets, "job_type")

	CacheLookups = counter("cache", "lookups_total",
		"Cache lookups by driver and result.", "driver", "result")
)

func domainCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		OrdersCreated, OrderTransitions, OrderConflicts,
		RealtimeClients, RealtimeEvents,
		QueueJobsProcessed, QueueJobDuration,
		CacheLookups,
	}
}

func OrderCreated() { OrdersCreated.WithLabelValues().Inc() }

func OrderTransition(from, to string) { OrderTransitions.WithLabelValues(from, to).Inc() }

func OrderConflict(reason string) { OrderConflicts.WithLabelValues(reason).Inc() }

// RealtimeEvent counts one emitted frame. outcome is sent, dropped or error.
func RealtimeEvent(event, outcome string) { RealtimeEvents.WithLabelValues(event, outcome).Inc() }

// RecordQueueJob records a finished job run.
func RecordQueueJob(jobType, status string, start time.Time) {
	QueueJobsProcessed.WithLabelValues(jobType, status).Inc()
	QueueJobDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())
}

// CacheLookup counts a lookup as a hit or a miss.
func CacheLookup(driver string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(driver, result).Inc()
}
