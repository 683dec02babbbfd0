// Package procctl starts shell commands as child processes and stops them the
// way the host platform expects.
//
// Default returns the Terminator for the running OS: on Unix-like systems the
// child runs in its own process group and receives SIGTERM; on Windows the
// whole process tree is ended with taskkill. Stop applies the terminator and
// escalates to a forced kill after a grace period.
package procctl
