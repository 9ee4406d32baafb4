// Package render turns manifest pages into self-contained static HTML
// documents: thumbnail grid, lightbox dialogs, tag filter bar, page
// navigation, and an auto-advancing slideshow, all with inline CSS and
// JavaScript.
//
// Rendering is pure with respect to the manifest: the same records and
// page size always produce byte-identical output. Pages embed no
// timestamps.
package render
