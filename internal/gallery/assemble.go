package gallery

import (
	"fmt"
	"sort"
	"time"

	"mc-gallery/internal/normalize"
)

// StructuralError reports a join inconsistency between the normalizer
// output and the per-image results. It indicates a pipeline bug, so the
// run must abort rather than write a corrupt manifest.
type StructuralError struct {
	CanonicalName string
	Reason        string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("manifest join inconsistency for %s: %s", e.CanonicalName, e.Reason)
}

// Assemble joins the normalizer plan with the per-image records into a
// Manifest in canonical order.
//
// Every mapping must have exactly one record; a missing or surplus record
// is a StructuralError. A record with no thumbnail is fine — thumbnail
// failures are per-image, not structural.
func Assemble(mappings []normalize.Mapping, records map[string]ImageRecord, generatedAt time.Time) (*Manifest, error) {
	if len(records) > len(mappings) {
		for name := range records {
			if !mappingExists(mappings, name) {
				return nil, &StructuralError{CanonicalName: name, Reason: "record has no corresponding normalized name"}
			}
		}
	}

	images := make([]ImageRecord, 0, len(mappings))
	for _, m := range mappings {
		rec, ok := records[m.Canonical]
		if !ok {
			return nil, &StructuralError{CanonicalName: m.Canonical, Reason: "no record produced for normalized name"}
		}
		if rec.CanonicalName != m.Canonical {
			return nil, &StructuralError{CanonicalName: m.Canonical, Reason: "record carries mismatched canonical name"}
		}
		images = append(images, rec)
	}

	// Canonical sort order, independent of worker completion order.
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].CanonicalName < images[j].CanonicalName
	})

	return &Manifest{
		GeneratedAt: generatedAt.UTC(),
		Count:       len(images),
		Images:      images,
	}, nil
}

func mappingExists(mappings []normalize.Mapping, canonical string) bool {
	for _, m := range mappings {
		if m.Canonical == canonical {
			return true
		}
	}
	return false
}
