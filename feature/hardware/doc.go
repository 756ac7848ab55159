// Package hardware implements the equivalence rules for computer-hardware
// listings. It is the concrete collaborator behind reconcile.Equivalence:
// value normalization, attribute-specific predicates (CPU models, CPU
// generations, screen sizes, clock speeds), configurable synonym groups and
// the comparison record formatter.
//
// The package also loads user key mappings from a YAML file, with a TTL cache
// protected against stampedes by singleflight.
package hardware
