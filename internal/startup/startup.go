package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"mc-gallery/internal/logging"

	"golang.org/x/term"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Config holds all build configuration.
type Config struct {
	ImagesDir      string
	OutputDir      string
	CacheDir       string
	PageSize       int
	ThumbWidth     int
	ThumbHeight    int
	WebpQuality    int
	ThumbTimeout   time.Duration
	Title          string
	RemoteBucket   string
	PublicBaseURL  string
	PushgatewayURL string

	// Derived paths
	ThumbnailDir string
	CacheDBPath  string

	// CopyImages is set when no public base URL is configured: source
	// images are then copied into the output directory and served
	// alongside the pages.
	CopyImages bool
}

// LoadConfig loads and validates configuration from environment variables.
func LoadConfig() (*Config, error) {
	printBanner()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	imagesDir := getEnv("IMAGES_DIR", "images")
	outputDir := getEnv("OUTPUT_DIR", ".")
	cacheDir := getEnv("CACHE_DIR", ".gallery-cache")
	pageSize := getEnvInt("IMAGES_PER_PAGE", 20)
	thumbWidth := getEnvInt("THUMBNAIL_WIDTH", 400)
	thumbHeight := getEnvInt("THUMBNAIL_HEIGHT", 300)
	webpQuality := getEnvInt("WEBP_QUALITY", 85)
	thumbTimeoutStr := getEnv("THUMBNAIL_TIMEOUT", "30s")
	title := getEnv("GALLERY_TITLE", "Minecraft Server Gallery")
	remoteBucket := getEnv("REMOTE_BUCKET", "")
	publicBaseURL := getEnv("PUBLIC_BASE_URL", "")
	pushgatewayURL := getEnv("PUSHGATEWAY_URL", "")

	logging.Info("  IMAGES_DIR:        %s", imagesDir)
	logging.Info("  OUTPUT_DIR:        %s", outputDir)
	logging.Info("  CACHE_DIR:         %s", cacheDir)
	logging.Info("  IMAGES_PER_PAGE:   %d", pageSize)
	logging.Info("  THUMBNAIL_WIDTH:   %d", thumbWidth)
	logging.Info("  THUMBNAIL_HEIGHT:  %d", thumbHeight)
	logging.Info("  WEBP_QUALITY:      %d", webpQuality)
	logging.Info("  THUMBNAIL_TIMEOUT: %s", thumbTimeoutStr)
	logging.Info("  GALLERY_TITLE:     %s", title)
	logging.Info("  REMOTE_BUCKET:     %s", emptyAs(remoteBucket, "(none)"))
	logging.Info("  PUBLIC_BASE_URL:   %s", emptyAs(publicBaseURL, "(none, images copied locally)"))
	logging.Info("  PUSHGATEWAY_URL:   %s", emptyAs(pushgatewayURL, "(none)"))
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	if pageSize < 1 {
		logging.Warn("  Invalid IMAGES_PER_PAGE, using default: 20")
		pageSize = 20
	}
	if webpQuality < 1 || webpQuality > 100 {
		logging.Warn("  Invalid WEBP_QUALITY, using default: 85")
		webpQuality = 85
	}

	thumbTimeout, err := time.ParseDuration(thumbTimeoutStr)
	if err != nil || thumbTimeout <= 0 {
		logging.Warn("  Invalid THUMBNAIL_TIMEOUT, using default: 30s")
		thumbTimeout = 30 * time.Second
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	imagesDir, err = filepath.Abs(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve images directory path: %w", err)
	}
	logging.Info("  Images directory (absolute): %s", imagesDir)

	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory path: %w", err)
	}
	logging.Info("  Output directory (absolute): %s", outputDir)

	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	logging.Info("  Cache directory (absolute): %s", cacheDir)

	// The output directory is required and must be writable.
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory error: %w", err)
	}
	if err := testWriteAccess(outputDir); err != nil {
		return nil, fmt.Errorf("output directory is not writable: %w", err)
	}
	logging.Info("  [OK] Output directory is writable")

	// The cache directory is required for the thumbnail index.
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("cache directory error: %w", err)
	}
	if err := testWriteAccess(cacheDir); err != nil {
		return nil, fmt.Errorf("cache directory is not writable: %w", err)
	}
	logging.Info("  [OK] Cache directory is writable")

	// The images directory may not exist yet when a remote sync is going
	// to populate it; the pipeline re-checks after the sync stage.
	if _, err := os.Stat(imagesDir); err != nil {
		if remoteBucket == "" {
			logging.Warn("  Images directory does not exist: %s", imagesDir)
		} else {
			logging.Info("  Images directory will be created by remote sync")
		}
	}

	config := &Config{
		ImagesDir:      imagesDir,
		OutputDir:      outputDir,
		CacheDir:       cacheDir,
		PageSize:       pageSize,
		ThumbWidth:     thumbWidth,
		ThumbHeight:    thumbHeight,
		WebpQuality:    webpQuality,
		ThumbTimeout:   thumbTimeout,
		Title:          title,
		RemoteBucket:   remoteBucket,
		PublicBaseURL:  publicBaseURL,
		PushgatewayURL: pushgatewayURL,
		ThumbnailDir:   filepath.Join(outputDir, "thumbnails"),
		CacheDBPath:    filepath.Join(cacheDir, "thumbnails.db"),
		CopyImages:     publicBaseURL == "",
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Remote sync:   %s", enabledString(remoteBucket != ""))
	logging.Info("    Local images:  %s", enabledString(config.CopyImages))
	logging.Info("    Metrics push:  %s", enabledString(pushgatewayURL != ""))

	return config, nil
}

// SourceRef builds the full-resolution reference for a canonical name:
// the public base URL when remote-served, a relative images/ path when
// the originals travel with the pages.
func (c *Config) SourceRef(canonicalName string) string {
	if c.PublicBaseURL != "" {
		base := c.PublicBaseURL
		if base[len(base)-1] != '/' {
			base += "/"
		}
		return base + canonicalName
	}
	return "images/" + canonicalName
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logging.Warn("  Invalid %s value %q, using default %d", key, value, fallback)
	}
	return fallback
}

func emptyAs(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("  failed to remove test file %s: %v", testFile, err)
	}
	return nil
}

// printBanner prints the startup banner. Suppressed when stdout is not a
// terminal so piped logs stay clean.
func printBanner() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Println("============================================================")
	fmt.Println("  mc-gallery - static gallery generator")
	fmt.Printf("  version %s (%s) built %s with %s\n", Version, Commit, BuildTime, GoVersion)
	fmt.Println("============================================================")
}

// LogFatal logs a fatal startup error and exits non-zero.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// LogStage logs a stage header in the sectioned startup style.
func LogStage(name string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("%s", name)
	logging.Info("------------------------------------------------------------")
}

// LogStageDone logs stage completion with its duration.
func LogStageDone(name string, duration time.Duration) {
	logging.Info("  [OK] %s in %v", name, duration)
}
