package checklist

import (
	"context"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/idilsaglam/checklist/internal/model"
)

// Task operations come in two flavours. The id-addressed ones are the
// primitives; the index-addressed ones resolve a position in the list's
// stored items to an id and delegate. Positions shift after every mutation,
// so callers must re-read the list before each index-based call.

// AddTaskToList appends a pending task. Messages must be unique within the
// list (exact match).
func (s *Store) AddTaskToList(ctx context.Context, listSlug, message string) (model.Item, error) {
	var added model.Item
	err := s.mutate(ctx, "AddTaskToList", []attribute.KeyValue{attribute.String("list.slug", listSlug)}, func() (bool, error) {
		li := s.indexLocked(listSlug)
		if li < 0 {
			return false, &model.NotFoundError{Kind: "list", Key: listSlug}
		}
		msg, err := model.NormalizeMessage(message)
		if err != nil {
			return false, err
		}
		if messageTaken(s.lists[li].Items, msg, "") {
			return false, &model.ValidationError{Field: "message", Reason: model.ErrDuplicate}
		}
		added = model.Item{
			ID:        s.newID(),
			Message:   msg,
			CreatedAt: s.timestamp(),
		}
		s.lists[li].Items = append(s.lists[li].Items, added)
		return true, nil
	})
	if err != nil {
		return model.Item{}, err
	}
	return added, nil
}

// EditTaskInList replaces the message of the task at index. Unknown lists and
// out-of-range indexes fail with a *model.NotFoundError.
func (s *Store) EditTaskInList(ctx context.Context, listSlug string, index int, message string) error {
	return s.mutate(ctx, "EditTaskInList", indexAttrs(listSlug, index), func() (bool, error) {
		li, id, ok := s.resolveLocked(listSlug, index)
		if !ok {
			return false, s.missingLocked(listSlug, strconv.Itoa(index))
		}
		return s.editLocked(li, id, message)
	})
}

// EditTask replaces the message of the task with the given id.
func (s *Store) EditTask(ctx context.Context, listSlug, id, message string) error {
	return s.mutate(ctx, "EditTask", idAttrs(listSlug, id), func() (bool, error) {
		li := s.indexLocked(listSlug)
		if li < 0 || s.lists[li].IndexOf(id) < 0 {
			return false, s.missingLocked(listSlug, id)
		}
		return s.editLocked(li, id, message)
	})
}

// ToggleTaskInList flips the done flag of the task at index. A stale index or
// unknown list is logged and ignored.
func (s *Store) ToggleTaskInList(ctx context.Context, listSlug string, index int) error {
	return s.mutate(ctx, "ToggleTaskInList", indexAttrs(listSlug, index), func() (bool, error) {
		li, id, ok := s.resolveLocked(listSlug, index)
		if !ok {
			s.staleLocked("toggle", listSlug, strconv.Itoa(index))
			return false, nil
		}
		return s.toggleLocked(li, id), nil
	})
}

// ToggleTask flips the done flag of the task with the given id. Unknown ids
// are logged and ignored.
func (s *Store) ToggleTask(ctx context.Context, listSlug, id string) error {
	return s.mutate(ctx, "ToggleTask", idAttrs(listSlug, id), func() (bool, error) {
		li := s.indexLocked(listSlug)
		if li < 0 {
			s.staleLocked("toggle", listSlug, id)
			return false, nil
		}
		return s.toggleLocked(li, id), nil
	})
}

// DeleteTaskFromList removes the task at index. A stale index or unknown list
// is logged and ignored.
func (s *Store) DeleteTaskFromList(ctx context.Context, listSlug string, index int) error {
	return s.mutate(ctx, "DeleteTaskFromList", indexAttrs(listSlug, index), func() (bool, error) {
		li, id, ok := s.resolveLocked(listSlug, index)
		if !ok {
			s.staleLocked("delete", listSlug, strconv.Itoa(index))
			return false, nil
		}
		return s.deleteLocked(li, id), nil
	})
}

// DeleteTask removes the task with the given id. Unknown ids are ignored.
func (s *Store) DeleteTask(ctx context.Context, listSlug, id string) error {
	return s.mutate(ctx, "DeleteTask", idAttrs(listSlug, id), func() (bool, error) {
		li := s.indexLocked(listSlug)
		if li < 0 {
			s.staleLocked("delete", listSlug, id)
			return false, nil
		}
		return s.deleteLocked(li, id), nil
	})
}

func (s *Store) resolveLocked(listSlug string, index int) (li int, id string, ok bool) {
	li = s.indexLocked(listSlug)
	if li < 0 {
		return -1, "", false
	}
	items := s.lists[li].Items
	if index < 0 || index >= len(items) {
		return li, "", false
	}
	return li, items[index].ID, true
}

func (s *Store) missingLocked(listSlug, key string) error {
	if s.indexLocked(listSlug) < 0 {
		return &model.NotFoundError{Kind: "list", Key: listSlug}
	}
	return &model.NotFoundError{Kind: "task", Key: key}
}

func (s *Store) staleLocked(op, listSlug, key string) {
	s.log.Warn("ignoring task operation on missing target",
		slog.String("op", op),
		slog.String("list", listSlug),
		slog.String("task", key),
	)
}

func (s *Store) editLocked(li int, id, message string) (bool, error) {
	msg, err := model.NormalizeMessage(message)
	if err != nil {
		return false, err
	}
	items := s.lists[li].Items
	if messageTaken(items, msg, id) {
		return false, &model.ValidationError{Field: "message", Reason: model.ErrDuplicate}
	}
	i := s.lists[li].IndexOf(id)
	if items[i].Message == msg {
		return false, nil
	}
	items[i].Message = msg
	return true, nil
}

func (s *Store) toggleLocked(li int, id string) bool {
	i := s.lists[li].IndexOf(id)
	if i < 0 {
		s.staleLocked("toggle", s.lists[li].Slug, id)
		return false
	}
	s.lists[li].Items[i].Done = !s.lists[li].Items[i].Done
	return true
}

func (s *Store) deleteLocked(li int, id string) bool {
	i := s.lists[li].IndexOf(id)
	if i < 0 {
		s.staleLocked("delete", s.lists[li].Slug, id)
		return false
	}
	items := s.lists[li].Items
	s.lists[li].Items = append(items[:i], items[i+1:]...)
	return true
}

func messageTaken(items []model.Item, msg, except string) bool {
	for _, it := range items {
		if it.ID != except && it.Message == msg {
			return true
		}
	}
	return false
}

func indexAttrs(listSlug string, index int) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("list.slug", listSlug), attribute.Int("task.index", index)}
}

func idAttrs(listSlug, id string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("list.slug", listSlug), attribute.String("task.id", id)}
}
