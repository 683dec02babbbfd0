// Package deps checks for the external tools the launcher shells out to: the
// JavaScript runtime, the package manager, and the bundler used by the
// package command.
package deps
