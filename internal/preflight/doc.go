// Package preflight verifies the runtime environment before the service
// accepts work: required binaries on PATH, directory permissions, and free
// disk space for outputs.
package preflight
