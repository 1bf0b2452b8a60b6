package ordering

import (
	"fmt"
	"sort"

	"github.com/idilsaglam/checklist/internal/model"
)

// Order selects a creation-time direction for display.
type Order int

const (
	NewToOld Order = iota
	OldToNew
)

// ParseOrder accepts "new"/"newToOld" and "old"/"oldToNew".
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "new", "newToOld":
		return NewToOld, nil
	case "old", "oldToNew":
		return OldToNew, nil
	}
	return NewToOld, fmt.Errorf("unknown sort order %q", s)
}

// Indexed is an item paired with its position in the list's storage.
type Indexed struct {
	model.Item
	Index int
}

// View returns items sorted for display by creation time, each carrying the
// storage index to pass back to the store.
func View(items []model.Item, o Order) []Indexed {
	out := make([]Indexed, len(items))
	for i, it := range items {
		out[i] = Indexed{Item: it, Index: i}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if o == OldToNew {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ListsBy returns a copy of lists ordered by creation time.
func ListsBy(lists []model.CheckList, o Order) []model.CheckList {
	out := make([]model.CheckList, len(lists))
	copy(out, lists)
	sort.SliceStable(out, func(i, j int) bool {
		if o == OldToNew {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Page is one slice of a paginated sequence. Pages are 1-based.
type Page[T any] struct {
	Items      []T
	Current    int
	TotalPages int
}

// Paginate returns page of items with perPage entries. Out-of-range pages are
// clamped to the nearest valid page.
func Paginate[T any](items []T, perPage, page int) Page[T] {
	if perPage <= 0 {
		perPage = len(items)
		if perPage == 0 {
			perPage = 1
		}
	}
	total := (len(items) + perPage - 1) / perPage
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{Items: items[start:end], Current: page, TotalPages: total}
}
