// Package logging provides leveled logging helpers on top of the standard
// library logger. The level is read once from the LOG_LEVEL or DEBUG
// environment variables and defaults to info.
package logging
