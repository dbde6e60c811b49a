// Package metrics holds the Prometheus collectors shared by the services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HabitToggles counts toggles by direction: "mark" or "undo".
	HabitToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_habit_toggles_total",
		Help: "Habit toggles by direction",
	}, []string{"direction"})

	// StreakLapses counts streak state changes on day rollover.
	// Labels: "reset" (completed flag cleared), "broken" (streak zeroed).
	StreakLapses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_streak_lapses_total",
		Help: "Daily resets and broken streaks",
	}, []string{"kind"})

	XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_xp_awarded_total",
		Help: "XP credited by source",
	}, []string{"source"})

	AchievementsUnlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifedash_achievements_unlocked_total",
		Help: "Achievements newly awarded",
	})

	// CASRetries counts optimistic writes that lost a race and were retried.
	CASRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_cas_retries_total",
		Help: "Compare-and-swap write retries by resource",
	}, []string{"resource"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lifedash_http_request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method", "status"})

	InsightRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifedash_insight_requests_total",
		Help: "Weekly insight generations by result",
	}, []string{"result"})
)
