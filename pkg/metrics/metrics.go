// Copyright (C) 2026 TinyFedi Project
//
// This file is part of fedcore.
//
// fedcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fedcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fedcore.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics exposes Prometheus counters for the federation core.
// A nil *Metrics disables recording, so tests and library embedders
// can skip the registry entirely.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks federation-core metrics.
type Metrics struct {
	// Verification metrics
	VerificationsAccepted prometheus.Counter
	VerificationsRejected prometheus.Counter

	// Key resolution metrics
	KeyCacheHits     prometheus.Counter
	KeyCacheMisses   prometheus.Counter
	KeyFetchFailures prometheus.Counter

	// Delivery metrics
	DeliveriesSucceeded prometheus.Counter
	DeliveriesFailed    prometheus.Counter

	// Inbox queue metrics
	ActivitiesEnqueued prometheus.Counter
	QueueProcessed     prometheus.Counter
	QueueFailed        prometheus.Counter
	QueueUnknownType   prometheus.Counter
}

// New creates and registers the federation metrics. A nil registerer
// uses the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		VerificationsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_verifications_accepted_total",
			Help: "Inbound requests that passed signature verification",
		}),
		VerificationsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_verifications_rejected_total",
			Help: "Inbound requests that failed signature verification",
		}),
		KeyCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_key_cache_hits_total",
			Help: "Actor key resolutions served from the cache",
		}),
		KeyCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_key_cache_misses_total",
			Help: "Actor key resolutions that required a fetch",
		}),
		KeyFetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_key_fetch_failures_total",
			Help: "Actor key fetches that failed or matched no key",
		}),
		DeliveriesSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_deliveries_succeeded_total",
			Help: "Activities accepted by a remote inbox",
		}),
		DeliveriesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_deliveries_failed_total",
			Help: "Activity deliveries that failed",
		}),
		ActivitiesEnqueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_activities_enqueued_total",
			Help: "Accepted activities placed on the inbox queue",
		}),
		QueueProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_queue_processed_total",
			Help: "Queue entries processed and removed",
		}),
		QueueFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_queue_failed_total",
			Help: "Queue entries whose handler or load failed",
		}),
		QueueUnknownType: factory.NewCounter(prometheus.CounterOpts{
			Name: "fedcore_queue_unknown_type_total",
			Help: "Queue entries left queued because no handler is registered",
		}),
	}
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordVerification counts a verification decision.
func (m *Metrics) RecordVerification(accepted bool) {
	if m == nil {
		return
	}
	if accepted {
		m.VerificationsAccepted.Inc()
	} else {
		m.VerificationsRejected.Inc()
	}
}

// RecordKeyCache counts a key cache lookup.
func (m *Metrics) RecordKeyCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.KeyCacheHits.Inc()
	} else {
		m.KeyCacheMisses.Inc()
	}
}

// RecordKeyFetchFailure counts a failed key fetch.
func (m *Metrics) RecordKeyFetchFailure() {
	if m == nil {
		return
	}
	m.KeyFetchFailures.Inc()
}

// RecordDelivery counts a delivery attempt outcome.
func (m *Metrics) RecordDelivery(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.DeliveriesSucceeded.Inc()
	} else {
		m.DeliveriesFailed.Inc()
	}
}

// RecordEnqueue counts an accepted activity placed on the queue.
func (m *Metrics) RecordEnqueue() {
	if m == nil {
		return
	}
	m.ActivitiesEnqueued.Inc()
}

// RecordQueueProcessed counts a processed-and-removed queue entry.
func (m *Metrics) RecordQueueProcessed() {
	if m == nil {
		return
	}
	m.QueueProcessed.Inc()
}

// RecordQueueFailed counts a queue entry left in place after a failure.
func (m *Metrics) RecordQueueFailed() {
	if m == nil {
		return
	}
	m.QueueFailed.Inc()
}

// RecordQueueUnknownType counts a queue entry with no registered handler.
func (m *Metrics) RecordQueueUnknownType() {
	if m == nil {
		return
	}
	m.QueueUnknownType.Inc()
}
