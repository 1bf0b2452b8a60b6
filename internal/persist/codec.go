package persist

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/checklist/internal/model"
)

// On-disk shapes. Timestamps are written as RFC 3339 strings and read back
// from either strings or epoch-millisecond numbers.
type wireItem struct {
	ID        string `json:"id,omitempty"`
	Message   string `json:"message"`
	Done      any    `json:"done"`
	CreatedAt any    `json:"created_at"`
}

type wireList struct {
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Items     []wireItem `json:"items"`
	CreatedAt any        `json:"created_at"`
}

// Encode serializes the whole collection.
func Encode(lists []model.CheckList) ([]byte, error) {
	out := make([]wireList, 0, len(lists))
	for _, l := range lists {
		wl := wireList{
			Slug:      l.Slug,
			Title:     l.Title,
			Items:     make([]wireItem, 0, len(l.Items)),
			CreatedAt: FormatTimestamp(l.CreatedAt),
		}
		for _, it := range l.Items {
			wl.Items = append(wl.Items, wireItem{
				ID:        it.ID,
				Message:   it.Message,
				Done:      it.Done,
				CreatedAt: FormatTimestamp(it.CreatedAt),
			})
		}
		out = append(out, wl)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses a serialized collection. Items without an id get a fresh one
// and unparseable timestamps decode as the zero time. A JSON null decodes to
// a nil slice, which callers treat as "no data".
func Decode(b []byte) ([]model.CheckList, error) {
	var in []wireList
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if in == nil {
		return nil, nil // stored JSON null
	}
	lists := make([]model.CheckList, 0, len(in))
	for _, wl := range in {
		l := model.CheckList{
			Slug:  wl.Slug,
			Title: wl.Title,
			Items: make([]model.Item, 0, len(wl.Items)),
		}
		l.CreatedAt, _ = ParseTimestamp(wl.CreatedAt)
		seen := make(map[string]bool, len(wl.Items))
		for _, wi := range wl.Items {
			it := model.Item{
				ID:      wi.ID,
				Message: wi.Message,
				Done:    Truthy(wi.Done),
			}
			// ids address tasks, so a missing or repeated id gets a fresh one
			if it.ID == "" || seen[it.ID] {
				it.ID = uuid.NewString()
			}
			seen[it.ID] = true
			it.CreatedAt, _ = ParseTimestamp(wi.CreatedAt)
			l.Items = append(l.Items, it)
		}
		lists = append(lists, l)
	}
	return lists, nil
}

// FormatTimestamp renders t the way it is stored on disk.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts an ISO-8601 string or a number of milliseconds since
// the Unix epoch, as decoded by encoding/json into an interface value.
func ParseTimestamp(v any) (time.Time, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, fmt.Errorf("invalid epoch %v", x)
		}
		return time.UnixMilli(int64(x)).UTC(), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid epoch %q: %w", x, err)
		}
		return ParseTimestamp(f)
	case nil:
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
}

// Truthy coerces a decoded JSON value to a boolean using JavaScript rules:
// false, 0, "", null and NaN are false, everything else is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case string:
		return x != ""
	}
	return true
}
