// Package pipeline runs the gallery build end to end: optional remote
// sync, filename normalization, parallel per-image tagging and thumbnail
// generation, manifest assembly, and page rendering.
//
// Per-image failures are recovered and surfaced in the run summary;
// configuration and structural failures abort the run before any further
// output is written.
package pipeline
