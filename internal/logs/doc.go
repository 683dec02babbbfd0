// Package logs reads launcher log files for the "oficina logs" command.
//
// Tail prints the last lines of a log and can keep following it. The
// oficina.log pointer is re-resolved while following, so a new launcher run
// is picked up without restarting the command.
package logs
