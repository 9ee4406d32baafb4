// Package thumbs generates size-bounded, format-converted thumbnails for
// gallery images.
//
// The primary path uses libvips for decode-time shrinking and WebP export.
// When libvips is unavailable or fails on a file, a pure-Go fallback
// decodes with the standard image codecs (plus x/image webp) and encodes a
// JPEG instead. Either way the thumbnail fits inside the configured
// bounding box with the aspect ratio preserved.
package thumbs
