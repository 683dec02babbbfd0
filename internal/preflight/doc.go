// Package preflight provides readiness checks for the launcher environment:
// the JavaScript runtime and package tools, the dependency marker, the build
// output, the listening port, outbound connectivity, and the state directory.
//
// The "oficina status" command renders every result. Checks never stop the
// launcher on their own; Optional results describe conditions the launcher
// handles (a missing marker triggers an install, being offline switches the
// frontend to local mode).
package preflight
