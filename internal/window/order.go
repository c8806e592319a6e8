package window

import "cmp"

// Ascending returns a tie-break function for Keys/Frequencies/Snapshot that
// orders values of an ordered type V in ascending natural order, matching
// the spec's default tie-break rule.
func Ascending[V cmp.Ordered]() func(a, b V) bool {
	return func(a, b V) bool { return a < b }
}
