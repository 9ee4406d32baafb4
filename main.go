// Command mc-gallery builds a static photo gallery from a directory of
// Minecraft screenshots: it normalizes filenames, infers category tags,
// generates WebP thumbnails, writes a JSON manifest, and renders paginated
// HTML pages.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mc-gallery/internal/logging"
	"mc-gallery/internal/metrics"
	"mc-gallery/internal/pipeline"
	"mc-gallery/internal/startup"
	"mc-gallery/internal/thumbs"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize libvips for the WebP thumbnail path
	if err := thumbs.InitVips(); err != nil {
		logging.Warn("libvips unavailable, falling back to pure-Go thumbnails: %v", err)
	}
	defer thumbs.ShutdownVips()

	// The batch may be aborted externally; partial output from an
	// aborted run is not guaranteed consistent and a rebuild is the
	// recovery path.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	summary, err := pipeline.Run(ctx, config)
	if err != nil {
		startup.LogFatal("Build failed: %v", err)
	}

	startup.LogStage("BUILD COMPLETE")
	logging.Info("  Images:             %d", summary.Images)
	logging.Info("  Pages:              %d", summary.Pages)
	logging.Info("  Renamed:            %d", summary.Renamed)
	logging.Info("  Thumbnail failures: %d", len(summary.ThumbnailFailures))
	for _, name := range summary.ThumbnailFailures {
		logging.Warn("    no thumbnail: %s", name)
	}
	logging.Info("  Total time: %v", time.Since(startTime))

	if config.PushgatewayURL != "" {
		if err := metrics.Push(config.PushgatewayURL, "mc_gallery"); err != nil {
			logging.Warn("Metrics push failed: %v", err)
		}
	}

	os.Exit(0)
}
