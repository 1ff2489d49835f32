package service

import (
	"sort"
	"strings"

	"github.com/rekk2/event-registration/internal/domain"
)

// SplitName returns (first, last). The final whitespace-delimited token is the last name;
// a single token is both first and last.
func SplitName(full string) (first, last string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], fields[0]
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

// SortForDisplay orders entries in place by door, last name, first name, all case-insensitive.
// Equal keys keep their incoming (chronological) order.
func SortForDisplay(entries []domain.NameEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return displayLess(entries[i], entries[j])
	})
}

func displayLess(a, b domain.NameEntry) bool {
	if da, db := strings.ToLower(a.Door), strings.ToLower(b.Door); da != db {
		return da < db
	}
	aFirst, aLast := SplitName(a.Name)
	bFirst, bLast := SplitName(b.Name)
	if la, lb := strings.ToLower(aLast), strings.ToLower(bLast); la != lb {
		return la < lb
	}
	return strings.ToLower(aFirst) < strings.ToLower(bFirst)
}
