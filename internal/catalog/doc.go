// Package catalog holds the static success-criterion catalog and the report
// editions that select subsets of it. The catalog ships as an embedded YAML
// resource, is parsed once at startup, and is immutable afterwards.
package catalog
