// Package imagetypes defines the closed set of image file extensions the
// gallery recognizes, plus MIME lookups for rendered output.
package imagetypes
