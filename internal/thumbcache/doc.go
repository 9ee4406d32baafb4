// Package thumbcache tracks which thumbnails were generated from which
// source content, backed by a small SQLite database in the cache
// directory.
//
// The index lets a rebuild skip re-encoding a thumbnail whose source bytes
// have not changed since the previous run. Losing the database is
// harmless: every thumbnail is simply regenerated on the next build.
package thumbcache
