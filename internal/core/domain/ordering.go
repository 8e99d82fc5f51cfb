package domain

import (
	"cmp"
	"slices"
)

// Gap-numbered ordering constants for profile points.
const (
	// OrderGap is the spacing between neighbouring points after an append or renumber.
	OrderGap int64 = 1000

	// OrderMinGap is the smallest gap a move may leave before the list is renumbered.
	OrderMinGap int64 = 10

	// OrderHead is the virtual order value before the first point.
	OrderHead int64 = 0

	// OrderTail is the virtual order value after the last point (2^53 - 1).
	OrderTail int64 = 1<<53 - 1
)

// SortPointsByOrder sorts points by ascending Order, breaking ties by ID.
func SortPointsByOrder(points []ProfilePoint) {
	slices.SortFunc(points, func(a, b ProfilePoint) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
