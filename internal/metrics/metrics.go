// Package metrics holds the Prometheus collectors for the extraction pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claimdesk_http_requests_total",
	Help: "Total number of requests labelled by route and status",
}, []string{"route", "status"})

var queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "claimdesk_queue_depth",
	Help: "Number of documents waiting in the processing queue",
})

var inFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "claimdesk_queue_in_flight",
	Help: "Number of documents currently being processed",
})

var documentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claimdesk_documents_processed_total",
	Help: "Documents that left the queue, labelled by class and outcome",
}, []string{"class", "outcome"})

var processingRetries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "claimdesk_processing_retries_total",
	Help: "Transient failures that were retried",
})

var pagesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claimdesk_pages_extracted_total",
	Help: "Pages sent to the extraction service, labelled by class",
}, []string{"class"})

var stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "claimdesk_stage_duration_seconds",
	Help:    "Latency of pipeline stages and external calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 60},
}, []string{"stage"})

var followUps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "claimdesk_follow_up_tasks_total",
	Help: "Follow-up tasks by kind and outcome",
}, []string{"kind", "outcome"})

func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

func IncrementInFlight() {
	inFlight.Inc()
}

func DecrementInFlight() {
	inFlight.Dec()
}

func CaptureDocumentOutcome(class, outcome string) {
	if class == "" {
		class = "unclassified"
	}
	documentsProcessed.WithLabelValues(class, outcome).Inc()
}

func IncrementRetries() {
	processingRetries.Inc()
}

func IncrementPagesExtracted(class string) {
	pagesExtracted.WithLabelValues(class).Inc()
}

func CaptureStageLatency(stage string, elapsed time.Duration) {
	stageLatency.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func CaptureFollowUp(kind, outcome string) {
	followUps.WithLabelValues(kind, outcome).Inc()
}
