package gallery

import (
	"fmt"
	"regexp"
	"time"
)

// ImageRecord is the manifest entry for one source image.
//
// CanonicalName is unique across the collection and doubles as the stable
// sort key. Tags are a pure function of CanonicalName. ThumbnailRef stays
// empty until thumbnail generation succeeds for the image; an empty ref is
// valid and simply means the page links straight to the source.
type ImageRecord struct {
	OriginalName  string   `json:"originalName"`
	CanonicalName string   `json:"canonicalName"`
	Tags          []string `json:"tags"`
	ThumbnailRef  string   `json:"thumbnailRef,omitempty"`
	SourceRef     string   `json:"sourceRef"`
	TakenAt       string   `json:"takenAt,omitempty"`
}

// Manifest is the ordered collection of image records for one build.
// It is rebuilt whole on every run, never patched incrementally.
type Manifest struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Count       int           `json:"count"`
	Images      []ImageRecord `json:"images"`
}

// Page is a fixed-size slice of the manifest, rendered as one document.
type Page struct {
	Index      int // 1-based
	TotalPages int
	Records    []ImageRecord
}

// Filename returns the output filename for the page: index.html for the
// first page, indexN.html after that.
func (p Page) Filename() string {
	if p.Index <= 1 {
		return "index.html"
	}
	return fmt.Sprintf("index%d.html", p.Index)
}

// takenAtPattern finds a YYYY_MM_DD date embedded in a canonical name.
// The leading sequence key never matches: sequence numbers are zero
// padded well below 2000.
var takenAtPattern = regexp.MustCompile(`(20\d{2})_(\d{2})_(\d{2})`)

// ParseTakenAt extracts an embedded capture date from a canonical name,
// e.g. "0001_castle_build_2024_01_15.png" -> "2024-01-15". Returns ""
// when the name carries no date.
func ParseTakenAt(canonicalName string) string {
	m := takenAtPattern.FindStringSubmatch(canonicalName)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
}
