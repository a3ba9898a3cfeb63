package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReqCount counts HTTP requests by method, route and status
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lifeos_http_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	// XPGranted sums experience points granted, labelled by what earned them
	XPGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_xp_granted_total",
			Help: "Total XP granted to users",
		},
		[]string{"source"},
	)

	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_achievements_unlocked_total",
			Help: "Achievements unlocked",
		},
		[]string{"achievement"},
	)

	// GamificationFailures counts side effects that were logged and dropped
	GamificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_gamification_failures_total",
			Help: "Gamification side effects that failed after the primary action succeeded",
		},
		[]string{"operation"},
	)
)

// InitMetrics registers all collectors with the default Prometheus registry.
func InitMetrics() {
	prometheus.MustRegister(ReqCount, ReqDuration, XPGranted, AchievementsUnlocked, GamificationFailures)
}
