// Package console renders the launcher's user-facing output: the startup
// banner, connectivity notices, server and shutdown messages, status lines,
// and tables. Messages come from a small catalog in Brazilian Portuguese (the
// default, matching the workshop application) and English. ANSI colors are
// used only when the destination is a terminal.
package console
