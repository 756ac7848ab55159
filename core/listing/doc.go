// Package listing defines the read-only data model for one extracted
// marketplace listing: the Title, Specifics, Metadata, shared table values
// and per-row table entries, all as attribute-key to string mappings.
//
// The package also owns key normalization. Extractors wrap attribute keys in
// section markers ("title_cpu_model_key"); reconcilers compare on the bare
// name ("cpu_model"), and a trailing integer marks a numbered variant of the
// same attribute ("cpu_model2" for the second CPU in a dual-CPU lot).
//
// Snapshots are treated as immutable by the reconcilers: every reconciler
// clones its inputs on entry (see Snapshot.Clone) so that one listing's audit
// cannot contaminate the next.
package listing
