package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics records metadata for scheduled jobs.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	blocked  prometheus.Counter
	warned   prometheus.Counter
}

// NewCronJobMetrics registers the cron job metrics on the provided registerer.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of cron jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful cron job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed cron job executions.",
	}, []string{"job"})
	blocked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscription_accounts_blocked_total",
		Help: "Subscription accounts blocked by the payment loop.",
	})
	warned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscription_accounts_warned_total",
		Help: "Payment warnings emitted by the payment loop.",
	})
	reg.MustRegister(duration, success, failure, blocked, warned)
	return &CronJobMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		blocked:  blocked,
		warned:   warned,
	}
}

// ObserveDuration records the duration for the named job.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncBlocked increments the blocked-accounts counter.
func (c *CronJobMetrics) IncBlocked() {
	if c == nil || c.blocked == nil {
		return
	}
	c.blocked.Inc()
}

// IncWarned increments the warned-accounts counter.
func (c *CronJobMetrics) IncWarned() {
	if c == nil || c.warned == nil {
		return
	}
	c.warned.Inc()
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
