// Package issue defines the canonical audit finding and remediation types
// consumed by the evaluation core.
//
// Upstream scanners and remediation trackers produce findings in several
// shapes. Every shape is converted to the canonical Issue type exactly once,
// at the boundary, by the adapters in adapter.go. Code past that boundary
// only ever sees Issue and Remediation values.
package issue
