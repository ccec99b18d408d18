// Package metrics exposes Prometheus counters for the overdue-check job.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobRunsTotal counts finished job executions by terminal status.
	JobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "installment_job_runs_total",
		Help: "Finished overdue-check job runs by terminal status.",
	}, []string{"status"})

	InstallmentsTransitionedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "installment_job_transitions_total",
		Help: "Installments transitioned from pending to overdue.",
	})

	NotificationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "installment_job_notifications_created_total",
		Help: "In-app notifications created by the job.",
	})

	EmailsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "installment_job_emails_sent_total",
		Help: "Emails reported as sent by the external notification trigger.",
	})
)
