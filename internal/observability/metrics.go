// Package observability holds Prometheus metrics and OpenTelemetry tracing setup.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creepycorners_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// AuthAttempts counts register and login outcomes.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creepycorners_auth_attempts_total",
		Help: "Authentication attempts by action and outcome",
	}, []string{"action", "outcome"})

	// PostsCreated counts created posts by media kind.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creepycorners_posts_created_total",
		Help: "Total number of posts created by media kind",
	}, []string{"media_type"})

	// LikeToggles counts like toggles by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creepycorners_like_toggles_total",
		Help: "Like toggles by resulting state",
	}, []string{"state"})

	// CommentsCreated counts appended comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creepycorners_comments_created_total",
		Help: "Total number of comments created",
	})

	// MediaBytesIngested sums the size of stored uploads.
	MediaBytesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creepycorners_media_bytes_ingested_total",
		Help: "Bytes written by media ingestion by kind",
	}, []string{"kind"})

	// CacheLookups counts cache-aside hits and misses by key family.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creepycorners_cache_lookups_total",
		Help: "Cache lookups by key family and result",
	}, []string{"family", "result"})
)
