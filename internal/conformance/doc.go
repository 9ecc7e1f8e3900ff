// Package conformance classifies a document's findings against each success
// criterion. For every catalog criterion it gathers related findings,
// partitions them into fixed and remaining using remediation records, and
// decides a conformance status and heuristic confidence via an ordered rule
// table.
//
// Evaluation is a pure function of its inputs: identical issues and
// remediation state always produce identical analyses, so results are safe
// to cache and to recompute concurrently across unrelated documents.
//
// Confidence values are fixed heuristic constants carried on Config, not
// learned probabilities. They are tunable so stakeholders can revisit them
// without code changes.
package conformance
