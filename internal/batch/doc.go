// Package batch rolls per-document conformance evaluations into one
// composite report per criterion. Per-document detail is always retained so
// a composite failure stays traceable to the documents and findings that
// caused it.
//
// Fan-out reads are independent and run in parallel, but aggregation is a
// hard barrier: every document's evaluation must be present before any
// composite is computed. A document that cannot be fetched fails the whole
// batch; silently excluding it would corrupt the "N of Y documents"
// denominator used throughout remarks and summaries.
package batch
