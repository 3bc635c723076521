// Package logging configures slog for memex.
//
// By default logs go to stderr at the configured level, in text form. With
// --debug, JSON logs at debug level are written to a size-rotated file under
// ~/.memex/logs/ and can be read back with `memex logs`.
package logging
