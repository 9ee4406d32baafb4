// Package startup handles configuration loading, directory validation,
// and the sectioned startup logging for the gallery build.
//
// Configuration comes from environment variables, is validated once, and
// is passed into the pipeline as an explicit Config value so the core
// stays runnable in-process and in tests without environment mutation.
package startup
