// Package metrics defines Prometheus metrics for the gallery build.
//
// The generator is a batch job, so metrics are not scraped: when a
// Pushgateway URL is configured the collected values are pushed once at
// the end of the run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Build metrics
var (
	BuildRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mc_gallery_build_runs_total",
			Help: "Total number of gallery build runs",
		},
	)

	BuildDurationSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mc_gallery_build_duration_seconds",
			Help: "Wall-clock duration of the last gallery build",
		},
	)

	StageDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mc_gallery_stage_duration_seconds",
			Help: "Wall-clock duration of each pipeline stage in the last build",
		},
		[]string{"stage"}, // "sync", "normalize", "process", "assemble", "render"
	)

	ImagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mc_gallery_images_total",
			Help: "Number of images in the manifest of the last build",
		},
	)

	PagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mc_gallery_pages_total",
			Help: "Number of pages rendered in the last build",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailsGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mc_gallery_thumbnails_generated_total",
			Help: "Total number of thumbnails generated",
		},
	)

	ThumbnailsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mc_gallery_thumbnails_skipped_total",
			Help: "Total number of thumbnails skipped because the source was unchanged",
		},
	)

	ThumbnailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mc_gallery_thumbnail_failures_total",
			Help: "Total number of per-image thumbnail failures",
		},
	)

	ProcessWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mc_gallery_process_workers",
			Help: "Number of parallel per-image workers in the last build",
		},
	)
)

// Push sends all collected metrics to the Pushgateway at url under the
// given job name. Called once at the end of a build; a push failure is
// reported but must never fail the run.
func Push(url, job string) error {
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
