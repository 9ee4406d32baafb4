package thumbs

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // MD5 used for change detection, not security
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mc-gallery/internal/logging"
	"mc-gallery/internal/metrics"
	"mc-gallery/internal/thumbcache"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DefaultTimeout bounds the wall-clock time spent on a single image so a
// malformed file cannot hang the whole batch.
const DefaultTimeout = 30 * time.Second

// Options configures a Generator.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int           // WebP (and fallback JPEG) quality, 1-100
	Timeout   time.Duration // per-image budget; DefaultTimeout when zero
	Index     *thumbcache.Index
}

// Generator writes thumbnails into a single output directory. It is safe
// for concurrent use.
type Generator struct {
	outDir string
	opts   Options
}

// New creates a Generator writing into outDir, creating it if needed.
func New(outDir string, opts Options) (*Generator, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating thumbnail directory %s: %w", outDir, err)
	}
	return &Generator{outDir: outDir, opts: opts}, nil
}

type thumbResult struct {
	name string
	err  error
}

// Generate produces the thumbnail for the image at srcPath, whose
// canonical name is canonicalName, and returns the thumbnail filename
// relative to the output directory (e.g. "0001_castle.webp").
//
// When the cache index knows the source content is unchanged and the
// previous thumbnail still exists, generation is skipped.
func (g *Generator) Generate(ctx context.Context, srcPath, canonicalName string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", srcPath, err)
	}
	sourceHash := fmt.Sprintf("%x", md5.Sum(data)) //nolint:gosec // change detection only

	if g.opts.Index != nil {
		cached, err := g.opts.Index.Lookup(ctx, canonicalName, sourceHash)
		if err != nil {
			logging.Warn("Thumbnail index lookup failed for %s: %v", canonicalName, err)
		} else if cached != "" {
			if _, statErr := os.Stat(filepath.Join(g.outDir, cached)); statErr == nil {
				logging.Debug("Thumbnail up to date, skipping: %s", canonicalName)
				metrics.ThumbnailsSkippedTotal.Inc()
				return cached, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	ch := make(chan thumbResult, 1)
	go func() {
		name, err := g.render(srcPath, canonicalName, data)
		ch <- thumbResult{name: name, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", res.err
		}
		metrics.ThumbnailsGeneratedTotal.Inc()
		if g.opts.Index != nil {
			if err := g.opts.Index.Record(ctx, canonicalName, sourceHash, res.name); err != nil {
				logging.Warn("Thumbnail index record failed for %s: %v", canonicalName, err)
			}
		}
		return res.name, nil
	case <-ctx.Done():
		return "", fmt.Errorf("thumbnail generation for %s: %w", srcPath, ctx.Err())
	}
}

// render encodes the thumbnail and writes it to the output directory,
// returning the written filename. The vips WebP path is tried first, with
// the pure-Go JPEG path as fallback.
func (g *Generator) render(srcPath, canonicalName string, data []byte) (string, error) {
	stem := strings.TrimSuffix(canonicalName, filepath.Ext(canonicalName))

	if IsVipsAvailable() {
		webpBytes, err := renderWebpWithVips(srcPath, g.opts.MaxWidth, g.opts.MaxHeight, g.opts.Quality)
		if err == nil {
			name := stem + ".webp"
			if err := os.WriteFile(filepath.Join(g.outDir, name), webpBytes, 0o644); err != nil {
				return "", fmt.Errorf("writing thumbnail %s: %w", name, err)
			}
			return name, nil
		}
		logging.Debug("Vips path failed for %s, falling back: %v", srcPath, err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", srcPath, err)
	}

	thumb := imaging.Fit(img, g.opts.MaxWidth, g.opts.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: g.opts.Quality}); err != nil {
		return "", fmt.Errorf("encoding thumbnail for %s: %w", srcPath, err)
	}

	name := stem + ".jpg"
	if err := os.WriteFile(filepath.Join(g.outDir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing thumbnail %s: %w", name, err)
	}
	return name, nil
}

// decodeImage decodes with the registered codecs (jpeg, png, gif, webp),
// applying EXIF auto-orientation where imaging supports it.
func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	// imaging only handles a subset of formats; the plain decoder picks
	// up whatever else is registered (gif, webp).
	img, format, err2 := image.Decode(bytes.NewReader(data))
	if err2 != nil {
		return nil, err
	}
	logging.Debug("Decoded via stdlib image.Decode (format: %s)", format)
	return img, nil
}
