// Package metrics 部署引擎的 prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pvedeploy"

var (
	deploymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deployment",
			Name:      "total",
			Help:      "Finished deployments by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	deploymentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "deployment",
			Name:      "duration_seconds",
			Help:      "Duration of a deployment run in seconds",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 9), // 5s to ~21min
		},
		[]string{"path"},
	)

	templateCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "template_cache",
			Name:      "total",
			Help:      "Template resolutions and reconciliations by result",
		},
		[]string{"result"},
	)

	templateBuildSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "template_cache",
			Name:      "build_seconds",
			Help:      "Duration of a template build in seconds",
			Buckets:   prometheus.ExponentialBuckets(30, 2, 7), // 30s to ~32min
		},
	)

	lockContentionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lock",
			Name:      "contention_total",
			Help:      "Lock contention observed by mode and retry outcome",
		},
		[]string{"mode", "outcome"},
	)

	uploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "media",
			Name:      "upload_bytes_total",
			Help:      "Bytes of installation media uploaded to storage",
		},
	)

	inventoryEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "events_total",
			Help:      "Inventory changes applied by the controller",
		},
		[]string{"resource", "event"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "deployment",
			Name:      "queue_depth",
			Help:      "Deployments waiting for a worker",
		},
	)
)

func init() {
	prometheus.MustRegister(
		deploymentsTotal,
		deploymentDuration,
		templateCacheTotal,
		templateBuildSeconds,
		lockContentionTotal,
		uploadBytesTotal,
		inventoryEventsTotal,
		queueDepth,
	)
}

const (
	PathCloud = "cloud"
	PathISO   = "iso"

	OutcomeRunning = "running"
	OutcomeStopped = "stopped"
	OutcomeError   = "error"

	CacheHit       = "hit"
	CacheMiss      = "miss"
	CacheCorrupt   = "corrupt"
	CacheMisplaced = "misplaced"

	LockCleared   = "cleared"
	LockExhausted = "exhausted"
)

func RecordDeployment(path, outcome string, started time.Time) {
	deploymentsTotal.WithLabelValues(path, outcome).Inc()
	deploymentDuration.WithLabelValues(path).Observe(time.Since(started).Seconds())
}

func RecordTemplateCache(result string) {
	templateCacheTotal.WithLabelValues(result).Inc()
}

func RecordTemplateBuild(started time.Time) {
	templateBuildSeconds.Observe(time.Since(started).Seconds())
}

func RecordLockContention(mode, outcome string) {
	lockContentionTotal.WithLabelValues(mode, outcome).Inc()
}

func AddUploadBytes(n int64) {
	if n > 0 {
		uploadBytesTotal.Add(float64(n))
	}
}

func RecordInventoryEvent(resource, event string) {
	inventoryEventsTotal.WithLabelValues(resource, event).Inc()
}

func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}
