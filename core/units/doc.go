// Package units provides capacity parsing and range containment helpers
// shared by the reconcilers. All comparisons happen in gigabyte-normalized
// terms with fixed multipliers (MB=0.001, GB=1, TB=1000), so "0.5TB" and
// "512GB" land near each other on the same scale.
package units
