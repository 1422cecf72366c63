package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3u_merge_refresh_total",
		Help: "Playlist rebuilds, by result.",
	}, []string{"result"})

	metricRefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "m3u_merge_refresh_duration_seconds",
		Help:    "Time spent rebuilding the merged playlist.",
		Buckets: prometheus.DefBuckets,
	})

	metricChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "m3u_merge_channels",
		Help: "Channel count in the currently served playlist.",
	})

	metricRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "m3u_merge_http_requests_total",
		Help: "HTTP requests served, by path and status.",
	}, []string{"path", "status"})
)
