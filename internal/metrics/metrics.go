// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

// Package metrics holds the process-wide Prometheus collectors,
// exposed on the ops listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submissions counts RSVP writes by attendance and whether the
	// write was a create or an edit.
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rsvp",
		Name:      "submissions_total",
		Help:      "RSVP submissions accepted by the record manager.",
	}, []string{"attending", "kind"})

	// EmailsSent counts confirmation dispatches by outcome.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rsvp",
		Name:      "confirmation_emails_total",
		Help:      "Confirmation email dispatch attempts.",
	}, []string{"outcome"})

	// ImportedHouseholds counts guest-list rows written by bulk
	// imports.
	ImportedHouseholds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rsvp",
		Name:      "imported_households_total",
		Help:      "Households created through spreadsheet import.",
	})
)
