// Package main hosts the oficina launcher entrypoint and command graph.
//
// Invoked without a subcommand, oficina runs the launcher: it checks
// connectivity, starts the frontend server, and opens the browser. The
// remaining commands report environment readiness, print the session
// journal or the latest run log, package the launcher with the configured
// bundler, and scaffold a configuration file. Configuration resolution is shared through a
// commandContext so subcommands stay declarative.
package main
