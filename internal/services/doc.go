// Package services defines the shared error taxonomy consumed by the
// pipeline and the external-tool adapters.
//
// Errors are tagged with sentinel markers (validation, not-found, external
// tool, timeout) via Wrap so callers can classify failures with errors.Is
// without string matching. Timeout is a distinguished subtype of external
// tool failure: IsTimeout implies IsExternalTool.
package services
