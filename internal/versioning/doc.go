// Package versioning keeps the immutable, diffable history of report
// documents. Every material change appends a new version whose number is
// allocated atomically through the store's insert-if-absent primitive;
// version numbers for a report form the gapless sequence 1..N. Stored
// records are never updated, only appended or administratively purged.
package versioning
