// Package connectivity answers "is the internet reachable right now?" and
// watches that answer over time.
//
// TCPProber performs a single outbound TCP connect and reduces every failure
// to false. Monitor polls a Prober on a fixed interval, owns the last known
// state, and notifies observers exactly once per online/offline change. Other
// components read the state through Snapshot and never mutate it.
package connectivity
