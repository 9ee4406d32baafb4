// Package tags infers gallery category tags from canonical filenames.
//
// Inference is a pure function over a fixed vocabulary: a tag applies when
// its keyword appears as a case-insensitive substring of the filename. No
// filesystem or image decoding is involved, and filenames matching nothing
// simply yield an empty set.
package tags

import (
	"sort"
	"strings"
)

// Vocabulary is the closed set of category keywords, matched against
// filenames. The rendered pages build their filter bar from this same
// list, so adding a keyword here is all it takes to surface a new
// category.
var Vocabulary = []string{
	"build",       // player creations and structures
	"redstone",    // redstone contraptions and mechanisms
	"landscape",   // natural scenery and terrain
	"event",       // server events and gatherings
	"pvp",         // player vs player content
	"farming",     // agricultural builds and farms
	"mining",      // underground and mining related
	"nether",      // nether dimension content
	"end",         // end dimension content
	"village",     // village builds and NPCs
	"castle",      // castle and fortress builds
	"modern",      // modern architectural style
	"medieval",    // medieval architectural style
	"spawn",       // spawn area screenshots
	"town",        // town and city builds
	"port",        // harbor and port builds
	"bridge",      // bridge constructions
	"tower",       // tower builds
	"underground", // underground bases
	"sky",         // sky builds and floating structures
}

// Infer returns the vocabulary keywords present as case-insensitive
// substrings of name, sorted alphabetically. An empty result is valid; it
// just means the filename carries no recognized category words.
func Infer(name string) []string {
	lower := strings.ToLower(name)

	var matched []string
	for _, keyword := range Vocabulary {
		if strings.Contains(lower, keyword) {
			matched = append(matched, keyword)
		}
	}

	sort.Strings(matched)
	return matched
}

// IsKnown reports whether tag is part of the vocabulary.
func IsKnown(tag string) bool {
	for _, keyword := range Vocabulary {
		if keyword == tag {
			return true
		}
	}
	return false
}
