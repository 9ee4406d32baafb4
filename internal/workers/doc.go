// Package workers provides helpers for sizing the per-image worker pool.
//
// Worker counts are derived from GOMAXPROCS rather than runtime.NumCPU so
// that container CPU limits are respected (Go 1.19+ sets GOMAXPROCS from
// cgroup limits automatically). The THUMB_WORKERS environment variable
// overrides the computed count.
package workers
