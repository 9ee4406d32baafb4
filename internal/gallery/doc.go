// Package gallery defines the gallery data model and the operations that
// derive it: assembling the manifest from per-image results, paginating
// it, and serializing it to gallery_metadata.json.
//
// The manifest is the single source of truth for one build. Thumbnails
// and rendered pages are projections of it and are safe to delete and
// regenerate at any time.
package gallery
