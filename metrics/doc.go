// Package metrics keeps lock-free counters and a latency histogram for token
// and translation operations.
//
// A nil *Metrics is valid and records nothing, so components can take an
// optional *Metrics without guarding every call.
package metrics
