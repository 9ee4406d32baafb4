package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"mc-gallery/internal/gallery"
	"mc-gallery/internal/logging"
	"mc-gallery/internal/metrics"
	"mc-gallery/internal/normalize"
	"mc-gallery/internal/remote"
	"mc-gallery/internal/render"
	"mc-gallery/internal/startup"
	"mc-gallery/internal/tags"
	"mc-gallery/internal/thumbcache"
	"mc-gallery/internal/thumbs"
	"mc-gallery/internal/workers"
)

// ConfigError marks a fatal precondition failure: the run aborts before
// any output is written.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Path, e.Reason)
}

// Summary reports the outcome of one build.
type Summary struct {
	Images            int
	Pages             int
	Renamed           int
	ThumbnailFailures []string // canonical names, sorted
	Duration          time.Duration
}

// job is one image handed to the worker pool.
type job struct {
	mapping normalize.Mapping
}

// result is the outcome of per-image work. thumbErr is a recovered
// per-image error; the record is always valid.
type result struct {
	record   gallery.ImageRecord
	thumbErr error
}

// Run executes the whole build described by cfg. The returned Summary is
// non-nil exactly when the build produced a manifest and pages.
func Run(ctx context.Context, cfg *startup.Config) (*Summary, error) {
	startTime := time.Now()
	metrics.BuildRunsTotal.Inc()

	// Stage: remote sync (optional, strictly before normalization).
	startup.LogStage("REMOTE SYNC")
	syncStart := time.Now()
	synced, err := remote.Sync(ctx, cfg.RemoteBucket, cfg.ImagesDir)
	if err != nil {
		return nil, err
	}
	if synced {
		startup.LogStageDone("Remote sync", time.Since(syncStart))
	} else {
		logging.Info("  Remote sync skipped")
	}
	metrics.StageDurationSeconds.WithLabelValues("sync").Set(time.Since(syncStart).Seconds())

	// Stage: scan and normalize. An empty or missing source directory is
	// fatal before anything is written.
	startup.LogStage("FILENAME NORMALIZATION")
	normStart := time.Now()

	names, err := normalize.ListImages(cfg.ImagesDir)
	if err != nil {
		return nil, &ConfigError{Path: cfg.ImagesDir, Reason: "source directory is not readable"}
	}

	mappings, err := normalize.Plan(names)
	if err != nil {
		return nil, &ConfigError{Path: cfg.ImagesDir, Reason: err.Error()}
	}

	if err := normalize.Apply(cfg.ImagesDir, mappings); err != nil {
		return nil, err
	}

	renamed := 0
	for _, m := range mappings {
		if m.Renamed() {
			renamed++
		}
	}
	logging.Info("  %d images, %d renamed", len(mappings), renamed)
	startup.LogStageDone("Normalization", time.Since(normStart))
	metrics.StageDurationSeconds.WithLabelValues("normalize").Set(time.Since(normStart).Seconds())

	// Stage: per-image work (tags + thumbnails) on a worker pool.
	startup.LogStage("IMAGE PROCESSING")
	processStart := time.Now()

	index, err := thumbcache.Open(ctx, cfg.CacheDBPath)
	if err != nil {
		logging.Warn("  Thumbnail index unavailable, regenerating everything: %v", err)
		index = nil
	} else {
		defer func() {
			if err := index.Close(); err != nil {
				logging.Warn("  Failed to close thumbnail index: %v", err)
			}
		}()
	}

	gen, err := thumbs.New(cfg.ThumbnailDir, thumbs.Options{
		MaxWidth:  cfg.ThumbWidth,
		MaxHeight: cfg.ThumbHeight,
		Quality:   cfg.WebpQuality,
		Timeout:   cfg.ThumbTimeout,
		Index:     index,
	})
	if err != nil {
		return nil, err
	}

	records, failures := processImages(ctx, cfg, gen, mappings)
	logging.Info("  %d images processed, %d thumbnail failures", len(records), len(failures))
	startup.LogStageDone("Image processing", time.Since(processStart))
	metrics.StageDurationSeconds.WithLabelValues("process").Set(time.Since(processStart).Seconds())

	if index != nil {
		keep := make(map[string]bool, len(mappings))
		for _, m := range mappings {
			keep[m.Canonical] = true
		}
		if _, err := index.Prune(ctx, keep); err != nil {
			logging.Warn("  Thumbnail index prune failed: %v", err)
		}
	}

	// Stage: assemble the manifest. A join inconsistency is a pipeline
	// bug and aborts the run.
	startup.LogStage("MANIFEST ASSEMBLY")
	assembleStart := time.Now()

	manifest, err := gallery.Assemble(mappings, records, time.Now())
	if err != nil {
		return nil, err
	}

	if cfg.CopyImages {
		if err := copyOriginals(cfg, mappings); err != nil {
			return nil, err
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, gallery.ManifestFilename)
	if err := manifest.Save(manifestPath); err != nil {
		return nil, err
	}
	logging.Info("  Manifest written: %s (%d records)", manifestPath, manifest.Count)
	startup.LogStageDone("Manifest assembly", time.Since(assembleStart))
	metrics.StageDurationSeconds.WithLabelValues("assemble").Set(time.Since(assembleStart).Seconds())

	// Stage: paginate and render.
	startup.LogStage("PAGE RENDERING")
	renderStart := time.Now()

	renderer, err := render.New(cfg.Title)
	if err != nil {
		return nil, err
	}

	pages := gallery.Paginate(manifest, cfg.PageSize)
	if err := renderer.WritePages(cfg.OutputDir, pages, manifest.Count); err != nil {
		return nil, err
	}
	logging.Info("  %d pages rendered into %s", len(pages), cfg.OutputDir)
	startup.LogStageDone("Page rendering", time.Since(renderStart))
	metrics.StageDurationSeconds.WithLabelValues("render").Set(time.Since(renderStart).Seconds())

	duration := time.Since(startTime)
	metrics.BuildDurationSeconds.Set(duration.Seconds())
	metrics.ImagesTotal.Set(float64(manifest.Count))
	metrics.PagesTotal.Set(float64(len(pages)))

	return &Summary{
		Images:            manifest.Count,
		Pages:             len(pages),
		Renamed:           renamed,
		ThumbnailFailures: failures,
		Duration:          duration,
	}, nil
}

// processImages runs tag inference and thumbnail generation for every
// mapping on a bounded worker pool. Results are funneled through a single
// collector; the per-image processing order is irrelevant because the
// assembler re-sorts into canonical order.
func processImages(ctx context.Context, cfg *startup.Config, gen *thumbs.Generator, mappings []normalize.Mapping) (map[string]gallery.ImageRecord, []string) {
	numWorkers := workers.ForCPU(8)
	if numWorkers > len(mappings) {
		numWorkers = len(mappings)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	metrics.ProcessWorkers.Set(float64(numWorkers))
	logging.Debug("Processing %d images with %d workers", len(mappings), numWorkers)

	jobs := make(chan job, len(mappings))
	results := make(chan result, len(mappings))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- processOne(ctx, cfg, gen, j.mapping)
			}
		}()
	}

	records := make(map[string]gallery.ImageRecord, len(mappings))
	var failures []string
	var mu sync.Mutex
	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for res := range results {
			mu.Lock()
			records[res.record.CanonicalName] = res.record
			if res.thumbErr != nil {
				failures = append(failures, res.record.CanonicalName)
			}
			mu.Unlock()
			if res.thumbErr != nil {
				metrics.ThumbnailFailuresTotal.Inc()
				logging.Warn("  Thumbnail failed for %s: %v", res.record.CanonicalName, res.thumbErr)
			}
		}
	}()

	for _, m := range mappings {
		jobs <- job{mapping: m}
	}
	close(jobs)
	wg.Wait()
	close(results)
	collectorWg.Wait()

	sort.Strings(failures)
	return records, failures
}

// processOne builds the ImageRecord for a single mapping. A thumbnail
// failure is returned alongside the record, never as a hard error.
func processOne(ctx context.Context, cfg *startup.Config, gen *thumbs.Generator, m normalize.Mapping) result {
	rec := gallery.ImageRecord{
		OriginalName:  m.Original,
		CanonicalName: m.Canonical,
		Tags:          tags.Infer(m.Canonical),
		SourceRef:     cfg.SourceRef(m.Canonical),
		TakenAt:       gallery.ParseTakenAt(m.Canonical),
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	srcPath := filepath.Join(cfg.ImagesDir, m.Canonical)
	thumbName, err := gen.Generate(ctx, srcPath, m.Canonical)
	if err != nil {
		return result{record: rec, thumbErr: err}
	}

	rec.ThumbnailRef = "thumbnails/" + thumbName
	return result{record: rec}
}

// copyOriginals copies the normalized sources into OUTPUT_DIR/images so
// pages can link them relatively when no public base URL is configured.
func copyOriginals(cfg *startup.Config, mappings []normalize.Mapping) error {
	destDir := filepath.Join(cfg.OutputDir, "images")
	if destDir == cfg.ImagesDir {
		logging.Debug("Images already live inside the output directory, no copy needed")
		return nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating images directory %s: %w", destDir, err)
	}

	for _, m := range mappings {
		if err := copyFile(filepath.Join(cfg.ImagesDir, m.Canonical), filepath.Join(destDir, m.Canonical)); err != nil {
			return err
		}
	}
	logging.Info("  Copied %d originals into %s", len(mappings), destDir)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
