// Package ordering holds the canonical ordering of lists and items, plus
// read-only views used by the terminal front ends.
package ordering

import (
	"sort"

	"github.com/idilsaglam/checklist/internal/model"
)

// ItemLess reports whether a sorts before b: pending before done, then
// oldest first. Message breaks exact timestamp ties so the order is total.
func ItemLess(a, b model.Item) bool {
	if a.Done != b.Done {
		return !a.Done
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Message < b.Message
}

// ListLess reports whether a sorts before b: newest first, slug on ties.
func ListLess(a, b model.CheckList) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Slug < b.Slug
}

// SortItems puts items in canonical order in place.
func SortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool { return ItemLess(items[i], items[j]) })
}

// SortLists puts lists in canonical order in place.
func SortLists(lists []model.CheckList) {
	sort.SliceStable(lists, func(i, j int) bool { return ListLess(lists[i], lists[j]) })
}

// Normalize sorts the collection and every list's items in place.
func Normalize(lists []model.CheckList) {
	for i := range lists {
		SortItems(lists[i].Items)
	}
	SortLists(lists)
}

// ItemsSorted reports whether items are in canonical order.
func ItemsSorted(items []model.Item) bool {
	return sort.SliceIsSorted(items, func(i, j int) bool { return ItemLess(items[i], items[j]) })
}

// ListsSorted reports whether the collection satisfies the ordering invariant.
func ListsSorted(lists []model.CheckList) bool {
	for _, l := range lists {
		if !ItemsSorted(l.Items) {
			return false
		}
	}
	return sort.SliceIsSorted(lists, func(i, j int) bool { return ListLess(lists[i], lists[j]) })
}
