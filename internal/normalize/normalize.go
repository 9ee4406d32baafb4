package normalize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mc-gallery/internal/imagetypes"
	"mc-gallery/internal/logging"
)

// ErrNoImages is returned when the source directory contains no files with
// a recognized image extension. This is a fatal configuration error for
// the whole pipeline.
var ErrNoImages = errors.New("no recognized image files in source directory")

// canonicalPattern matches names that already follow the NNNN_slug.ext
// scheme and therefore must not be rewritten.
var canonicalPattern = regexp.MustCompile(`^(\d{4})_([a-z0-9][a-z0-9_-]*)\.(jpg|jpeg|png|gif|webp)$`)

// knownPrefixes are legacy prefixes accumulated by earlier rename runs.
// Longer variants are listed first so a single strip removes the whole
// duplicated prefix.
var knownPrefixes = []string{
	"minecraft_minecraft_",
	"mc_minecraft_",
	"minecraft_",
	"mc_",
}

var (
	slugIllegal  = regexp.MustCompile(`[^a-z0-9_-]+`)
	slugCollapse = regexp.MustCompile(`_{2,}`)
	leadingSeq   = regexp.MustCompile(`^\d{4}_`)
)

// Mapping records the rename decision for one source file.
type Mapping struct {
	Original  string
	Canonical string
}

// Renamed reports whether the mapping changes the filename.
func (m Mapping) Renamed() bool {
	return m.Original != m.Canonical
}

// Plan computes the canonical name for every recognized image in names.
// Unrecognized extensions are ignored. The returned mappings are ordered
// by canonical name, which is the display order of the gallery.
//
// Plan is pure: it never touches the filesystem. Given the same set of
// names it always returns the same mappings.
func Plan(names []string) ([]Mapping, error) {
	var images []string
	for _, name := range names {
		if imagetypes.IsImage(name) {
			images = append(images, name)
		}
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	// Deterministic regardless of directory iteration order.
	sort.Strings(images)

	taken := make(map[string]bool, len(images))
	usedSeq := make(map[int]bool, len(images))
	mappings := make([]Mapping, 0, len(images))

	// First pass: canonical names are kept untouched and their sequence
	// numbers reserved, so re-running the normalizer is a no-op.
	var pending []string
	for _, name := range images {
		m := canonicalPattern.FindStringSubmatch(name)
		if m == nil {
			pending = append(pending, name)
			continue
		}
		seq, _ := strconv.Atoi(m[1])
		usedSeq[seq] = true
		taken[name] = true
		mappings = append(mappings, Mapping{Original: name, Canonical: name})
	}

	// Second pass: assign the next free sequence numbers in sorted input
	// order, resolving any residual name collision with a numeric suffix.
	nextSeq := 1
	for _, name := range pending {
		for usedSeq[nextSeq] {
			nextSeq++
		}
		seq := nextSeq
		usedSeq[seq] = true

		slug := Slugify(strings.TrimSuffix(name, filepath.Ext(name)))
		ext := imagetypes.Ext(name)

		canonical := fmt.Sprintf("%04d_%s%s", seq, slug, ext)
		for n := 2; taken[canonical]; n++ {
			canonical = fmt.Sprintf("%04d_%s_%d%s", seq, slug, n, ext)
		}
		taken[canonical] = true
		mappings = append(mappings, Mapping{Original: name, Canonical: canonical})
	}

	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Canonical < mappings[j].Canonical
	})

	return mappings, nil
}

// Slugify lowers stem into the canonical slug alphabet. Legacy rename
// prefixes and any leading sequence digits are stripped first so that
// re-slugging an already-prefixed name does not stack keys.
func Slugify(stem string) string {
	s := strings.ToLower(stem)
	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}

	// Drop a leading NNNN_ so a near-canonical name does not end up with
	// two sequence keys.
	s = leadingSeq.ReplaceAllString(s, "")

	s = strings.ReplaceAll(s, " ", "_")
	s = slugIllegal.ReplaceAllString(s, "_")
	s = slugCollapse.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_-")

	if s == "" {
		s = "image"
	}
	return s
}

// IsCanonical reports whether name already follows the canonical scheme.
func IsCanonical(name string) bool {
	return canonicalPattern.MatchString(name)
}

// Apply performs the planned renames inside dir. Mappings whose name is
// unchanged are skipped. A rename failure aborts immediately: continuing
// would leave the plan and the directory out of sync.
func Apply(dir string, mappings []Mapping) error {
	for _, m := range mappings {
		if !m.Renamed() {
			continue
		}
		from := filepath.Join(dir, m.Original)
		to := filepath.Join(dir, m.Canonical)
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("renaming %s: %w", m.Original, err)
		}
		logging.Debug("Renamed %s -> %s", m.Original, m.Canonical)
	}
	return nil
}

// ListImages returns the recognized image filenames inside dir. A missing
// directory is reported as an error naming the path.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imagetypes.IsImage(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
