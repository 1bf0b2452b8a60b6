package checklist

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/idilsaglam/checklist/internal/importer"
	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/slug"
)

// CreateList adds an empty list. Titles must be unique ignoring case, and the
// generated slug must be non-empty and unused: slug collisions are rejected,
// never suffixed.
func (s *Store) CreateList(ctx context.Context, title string) (model.CheckList, error) {
	var created model.CheckList
	err := s.mutate(ctx, "CreateList", []attribute.KeyValue{attribute.String("list.title", title)}, func() (bool, error) {
		t, err := model.NormalizeTitle(title)
		if err != nil {
			return false, err
		}
		if s.titleTakenLocked(t, -1) {
			return false, &model.ValidationError{Field: "title", Reason: model.ErrDuplicate}
		}
		sl := slug.Generate(t)
		if sl == "" {
			return false, &model.ValidationError{Field: "title", Reason: model.ErrUnaddressable}
		}
		if s.indexLocked(sl) >= 0 {
			return false, &model.ValidationError{Field: "title", Reason: model.ErrSlugTaken}
		}
		created = model.CheckList{
			Slug:      sl,
			Title:     t,
			Items:     []model.Item{},
			CreatedAt: s.timestamp(),
		}
		s.lists = append([]model.CheckList{created}, s.lists...)
		return true, nil
	})
	if err != nil {
		return model.CheckList{}, err
	}
	return created.Clone(), nil
}

// UpdateListTitle renames a list. The slug does not change so existing
// references stay valid. Unknown slugs fail with a *model.NotFoundError.
func (s *Store) UpdateListTitle(ctx context.Context, listSlug, title string) (model.CheckList, error) {
	var updated model.CheckList
	err := s.mutate(ctx, "UpdateListTitle", []attribute.KeyValue{attribute.String("list.slug", listSlug)}, func() (bool, error) {
		i := s.indexLocked(listSlug)
		if i < 0 {
			return false, &model.NotFoundError{Kind: "list", Key: listSlug}
		}
		t, err := model.NormalizeTitle(title)
		if err != nil {
			return false, err
		}
		if s.titleTakenLocked(t, i) {
			return false, &model.ValidationError{Field: "title", Reason: model.ErrDuplicate}
		}
		changed := s.lists[i].Title != t
		s.lists[i].Title = t
		updated = s.lists[i].Clone()
		return changed, nil
	})
	if err != nil {
		return model.CheckList{}, err
	}
	return updated, nil
}

// DeleteList removes a list and its tasks. Deleting a missing slug is a no-op.
func (s *Store) DeleteList(ctx context.Context, listSlug string) error {
	return s.mutate(ctx, "DeleteList", []attribute.KeyValue{attribute.String("list.slug", listSlug)}, func() (bool, error) {
		i := s.indexLocked(listSlug)
		if i < 0 {
			return false, nil
		}
		s.lists = append(s.lists[:i], s.lists[i+1:]...)
		return true, nil
	})
}

// ImportLists validates an exported list and prepends it to the collection.
// On any failure the collection is untouched and the error is a
// *model.ImportError.
func (s *Store) ImportLists(ctx context.Context, raw []byte) (model.CheckList, error) {
	l, err := importer.Parse(raw, s.timestamp())
	if err != nil {
		s.log.Info("import rejected", slog.Any("error", err))
		return model.CheckList{}, err
	}
	err = s.mutate(ctx, "ImportLists", []attribute.KeyValue{attribute.String("list.slug", l.Slug)}, func() (bool, error) {
		if s.indexLocked(l.Slug) >= 0 || s.titleTakenLocked(l.Title, -1) {
			return false, &model.ImportError{Reason: model.ImportListExists}
		}
		s.lists = append([]model.CheckList{l}, s.lists...)
		return true, nil
	})
	if err != nil {
		return model.CheckList{}, err
	}
	return l.Clone(), nil
}

// ExportList renders one list in the import format.
func (s *Store) ExportList(listSlug string) ([]byte, error) {
	l, ok := s.GetListBySlug(listSlug)
	if !ok {
		return nil, &model.NotFoundError{Kind: "list", Key: listSlug}
	}
	return importer.Export(l)
}

func (s *Store) titleTakenLocked(title string, except int) bool {
	for i := range s.lists {
		if i != except && strings.EqualFold(s.lists[i].Title, title) {
			return true
		}
	}
	return false
}
