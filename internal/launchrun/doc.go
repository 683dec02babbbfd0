// Package launchrun assembles a full launcher run from configuration.
//
// Run creates the per-run log file and its oficina.log pointer, opens the
// session journal, builds the connectivity monitor and its observers (console,
// journal, status hub), selects the dev or static launcher, and hands them to
// a supervisor bound to SIGINT and SIGTERM. The journal and the status hub are
// optional; failures to open them are logged and the run continues.
package launchrun
