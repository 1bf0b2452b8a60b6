package model

import "time"

// Limits enforced on user input. Lengths count characters, not bytes.
const (
	MaxTitleLen   = 50
	MaxMessageLen = 100
)

// Item is a single task inside a checklist.
// ID is a stable identity used internally; positions shift on every re-sort.
type Item struct {
	ID        string    `json:"id,omitempty"`
	Message   string    `json:"message"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckList is a named, ordered collection of items.
type CheckList struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy so callers can't alias the store's slices.
func (l CheckList) Clone() CheckList {
	out := l
	out.Items = make([]Item, len(l.Items))
	copy(out.Items, l.Items)
	return out
}

// IndexOf returns the storage position of the item with the given id, or -1.
func (l CheckList) IndexOf(id string) int {
	for i, it := range l.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Stats counts done and pending items.
func (l CheckList) Stats() (done, pending int) {
	for _, it := range l.Items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// CloneAll deep-copies a collection.
func CloneAll(lists []CheckList) []CheckList {
	out := make([]CheckList, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}
