// Package normalize rewrites arbitrary screenshot filenames into the
// canonical gallery naming scheme.
//
// A canonical name has the form NNNN_slug.ext: a four digit sequence
// number, an underscore, a lowercase slug, and a lowercase extension from
// the recognized set. The sequence number is the stable sort key, so the
// lexical order of canonical names is the display order of the gallery.
//
// Planning is deterministic and idempotent: names that are already
// canonical are kept as-is with their sequence numbers reserved, and the
// remaining names are assigned the next free sequence numbers in sorted
// order. Slug collisions are resolved with a numeric suffix.
package normalize
