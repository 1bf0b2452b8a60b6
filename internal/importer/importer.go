// Package importer validates externally supplied checklists and renders
// checklists for export.
package importer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/persist"
	"github.com/idilsaglam/checklist/internal/slug"
)

func fail(reason string, err error) error {
	return &model.ImportError{Reason: reason, Err: err}
}

// Parse decodes and validates one exported checklist:
//
//	{ "title": string, "created_at"?: ISO string, "items": [ { "message": string, "done"?: any, "created_at"?: ISO string } ] }
//
// Missing timestamps default to now. The returned list has its slug derived
// from the title and fresh item ids; slug collisions with existing lists are
// checked by the caller. Every error is a *model.ImportError.
func Parse(raw []byte, now time.Time) (model.CheckList, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.CheckList{}, fail(model.ImportInvalidJSON, err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return model.CheckList{}, fail(model.ImportInvalidShape, nil)
	}
	rawTitle, hasTitle := obj["title"]
	rawItems, hasItems := obj["items"]
	if !hasTitle || !hasItems {
		return model.CheckList{}, fail(model.ImportInvalidShape, nil)
	}
	titleStr, ok := rawTitle.(string)
	if !ok {
		return model.CheckList{}, fail(model.ImportInvalidShape, nil)
	}
	title, err := model.NormalizeTitle(titleStr)
	if err != nil {
		return model.CheckList{}, fail(model.ImportInvalidShape, err)
	}
	entries, ok := rawItems.([]any)
	if !ok {
		return model.CheckList{}, fail(model.ImportInvalidShape, nil)
	}

	items := make([]model.Item, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		it, err := parseItem(e, now)
		if err != nil {
			return model.CheckList{}, err
		}
		if seen[it.Message] {
			return model.CheckList{}, fail(model.ImportDuplicateTasks, nil)
		}
		seen[it.Message] = true
		items = append(items, it)
	}

	s := slug.Generate(title)
	if s == "" {
		return model.CheckList{}, fail(model.ImportInvalidShape,
			&model.ValidationError{Field: "title", Reason: model.ErrUnaddressable})
	}
	return model.CheckList{
		Slug:      s,
		Title:     title,
		Items:     items,
		CreatedAt: timestampOr(obj["created_at"], now),
	}, nil
}

func parseItem(e any, now time.Time) (model.Item, error) {
	m, ok := e.(map[string]any)
	if !ok {
		return model.Item{}, fail(model.ImportInvalidShape, nil)
	}
	msg, ok := m["message"].(string)
	if !ok {
		return model.Item{}, fail(model.ImportInvalidShape, nil)
	}
	msg, err := model.NormalizeMessage(msg)
	if err != nil {
		return model.Item{}, fail(model.ImportInvalidShape, err)
	}
	return model.Item{
		ID:        uuid.NewString(),
		Message:   msg,
		Done:      persist.Truthy(m["done"]),
		CreatedAt: timestampOr(m["created_at"], now),
	}, nil
}

func timestampOr(v any, now time.Time) time.Time {
	if v == nil {
		return now
	}
	t, err := persist.ParseTimestamp(v)
	if err != nil {
		return now
	}
	return t
}

type exportItem struct {
	Message   string `json:"message"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at"`
}

type exportList struct {
	Slug      string       `json:"slug"`
	Title     string       `json:"title"`
	CreatedAt string       `json:"created_at"`
	Items     []exportItem `json:"items"`
}

// Export serializes a single list in the format Parse accepts.
func Export(l model.CheckList) ([]byte, error) {
	out := exportList{
		Slug:      l.Slug,
		Title:     l.Title,
		CreatedAt: persist.FormatTimestamp(l.CreatedAt),
		Items:     make([]exportItem, 0, len(l.Items)),
	}
	for _, it := range l.Items {
		out.Items = append(out.Items, exportItem{
			Message:   it.Message,
			Done:      it.Done,
			CreatedAt: persist.FormatTimestamp(it.CreatedAt),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
