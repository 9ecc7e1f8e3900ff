// Package mapping groups audit findings by the success criteria they
// violate. The rule-id to criterion table is static and many-to-many: one
// scanner rule can violate several criteria, and a finding can carry
// explicit criterion tags of its own. Findings that match nothing are kept
// in an unmapped bucket so issue counts stay complete.
package mapping
