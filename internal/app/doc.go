// Package app wires configuration, logging, telemetry, the dataset cache,
// and the HTTP transport into a runnable GDP dashboard server.
package app
