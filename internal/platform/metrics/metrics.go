// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

// Package metrics registers the Prometheus instrumentation for the
// References API.
//
// Counters are registered once via promauto on the default registry and
// exposed by the /metrics endpoint wired in the api package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ReferencesSaved    prometheus.Counter
	ReferencesDeleted  prometheus.Counter
	ReferencesExported prometheus.Counter
	GuestCleanups      prometheus.Counter
}

// New creates all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all Prometheus metrics on the given registerer. Tests pass
// a fresh [prometheus.NewRegistry] to avoid duplicate-registration panics.
func NewWith(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		ReferencesSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "references_saved_total",
			Help: "Total number of references persisted",
		}),
		ReferencesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "references_deleted_total",
			Help: "Total number of references deleted by their owner",
		}),
		ReferencesExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "references_exported_total",
			Help: "Total number of copy-block export operations",
		}),
		GuestCleanups: factory.NewCounter(prometheus.CounterOpts{
			Name: "guest_cleanups_total",
			Help: "Total number of guest cascade-cleanup invocations",
		}),
	}
}
