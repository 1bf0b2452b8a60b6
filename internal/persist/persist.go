// Package persist mirrors the checklist collection into two local backends:
// a synchronous key-value store that is always present and an optional
// relational store written in the background.
package persist

import (
	"context"
	"log/slog"

	"github.com/idilsaglam/checklist/internal/model"
)

// FlatKey is the key the collection is stored under in the flat backend.
const FlatKey = "checkLists"

// Persistence is the port the store depends on. Save never fails from the
// caller's point of view and Load always yields a (possibly empty) collection.
type Persistence interface {
	Save(ctx context.Context, lists []model.CheckList)
	Load(ctx context.Context) []model.CheckList
}

// Flat is a synchronous key-value backend.
type Flat interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
}

// Relational is a backend holding the serialized collection in a single row.
// Available is a capability check; a false result is not an error.
type Relational interface {
	Available() bool
	LoadBlob(ctx context.Context) (blob []byte, ok bool, err error)
	SaveBlob(ctx context.Context, blob []byte) error
}

// Backend names used in warnings and logs.
const (
	BackendFlat       = "flat"
	BackendRelational = "relational"
)

// Warning describes a backend failure that was absorbed.
type Warning struct {
	Backend string
	Op      string // "save" | "load" | "decode" | "encode"
	Err     error
}

func (w Warning) Error() string {
	return w.Backend + " " + w.Op + ": " + w.Err.Error()
}

// Option configures a Dual adapter.
type Option func(*Dual)

// WithLogger sets the logger used for absorbed failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dual) {
		if l != nil {
			d.log = l
		}
	}
}

// WithWarningHook registers fn to observe absorbed failures. fn may be called
// from the background writer goroutine.
func WithWarningHook(fn func(Warning)) Option {
	return func(d *Dual) { d.onWarn = fn }
}
