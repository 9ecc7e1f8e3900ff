// Package acr defines the Accessibility Conformance Report document and
// builds it from conformance analyses. A document carries exactly the
// criteria of its edition, each with a conformance level, remarks, and an
// attribution tag; the finalize gate refuses to mark a document final until
// every criterion carries attributed remarks.
package acr
