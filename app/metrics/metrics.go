package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

var (
	ThumbnailResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsfeed",
		Name:      "thumbnail_resolutions_total",
		Help:      "Thumbnail resolutions by outcome (platform, scraped, fallback)",
	}, []string{"kind"})

	SourceQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "newsfeed",
		Name:      "source_query_duration_seconds",
		Help:      "Time spent querying the Notion data source",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "newsfeed",
		Name:      "pipeline_duration_seconds",
		Help:      "Time spent producing the full news sequence",
		Buckets:   prometheus.DefBuckets,
	})

	PipelineItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "newsfeed",
		Name:      "pipeline_items",
		Help:      "Number of items returned by the last pipeline run",
	})
)

func init() {
	Registry.MustRegister(
		ThumbnailResolutions,
		SourceQueryDuration,
		PipelineDuration,
		PipelineItems,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
