package persist

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/ordering"
)

const relationalWriteTimeout = 5 * time.Second

var errWriterStopped = errors.New("relational writer stopped")

// Dual writes through to a flat and an optional relational backend and reads
// relational first, flat second.
type Dual struct {
	flat   Flat
	rel    Relational
	log    *slog.Logger
	onWarn func(Warning)

	mu      sync.Mutex
	pending []byte // latest blob not yet handed to the relational backend
	kick    chan struct{}
	flushes chan chan struct{}
	stop    chan struct{}
	stopped chan struct{}
	closed  bool
	once    sync.Once
}

var _ Persistence = (*Dual)(nil)

// NewDual builds the adapter. rel may be nil when no relational backend is
// configured. When rel is set a background writer goroutine is started; call
// Close to drain and stop it.
func NewDual(flat Flat, rel Relational, opts ...Option) *Dual {
	d := &Dual{
		flat: flat,
		rel:  rel,
		log:  slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	if rel != nil {
		d.kick = make(chan struct{}, 1)
		d.flushes = make(chan chan struct{})
		d.stop = make(chan struct{})
		d.stopped = make(chan struct{})
		go d.writer()
	}
	return d
}

// Save writes the collection to the flat backend inline and queues it for the
// relational backend. Failures are logged, never returned.
func (d *Dual) Save(ctx context.Context, lists []model.CheckList) {
	blob, err := Encode(lists)
	if err != nil {
		d.warn(Warning{Backend: BackendFlat, Op: "encode", Err: err})
		return
	}
	if d.flat != nil {
		if err := d.flat.Set(FlatKey, blob); err != nil {
			d.warn(Warning{Backend: BackendFlat, Op: "save", Err: err})
		}
	}
	d.dispatch(blob)
}

// Load returns the relational copy when it has one, else the flat copy, else
// an empty collection. The result satisfies the ordering invariant.
func (d *Dual) Load(ctx context.Context) []model.CheckList {
	lists, ok := d.loadRelational(ctx)
	if !ok {
		lists, ok = d.loadFlat()
	}
	if !ok {
		return []model.CheckList{}
	}
	ordering.Normalize(lists)
	return lists
}

// Flush blocks until every queued relational write has been attempted.
func (d *Dual) Flush(ctx context.Context) error {
	if d.rel == nil {
		return nil
	}
	ack := make(chan struct{})
	select {
	case d.flushes <- ack:
	case <-d.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the writer. Saves after Close only
// reach the flat backend.
func (d *Dual) Close(ctx context.Context) error {
	if d.rel == nil {
		return nil
	}
	err := d.Flush(ctx)
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.stop)
	})
	select {
	case <-d.stopped:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (d *Dual) dispatch(blob []byte) {
	if d.rel == nil || !d.rel.Available() {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.warn(Warning{Backend: BackendRelational, Op: "save", Err: errWriterStopped})
		return
	}
	d.pending = blob
	d.mu.Unlock()
	select {
	case d.kick <- struct{}{}:
	default: // a wake-up is already queued; it will pick up the latest blob
	}
}

func (d *Dual) writer() {
	defer close(d.stopped)
	for {
		select {
		case <-d.kick:
			d.drain()
		case ack := <-d.flushes:
			d.drain()
			close(ack)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain writes the latest pending blob, if any. Intermediate snapshots that
// were superseded before the writer got to them are skipped.
func (d *Dual) drain() {
	d.mu.Lock()
	blob := d.pending
	d.pending = nil
	d.mu.Unlock()
	if blob == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), relationalWriteTimeout)
	defer cancel()
	if err := d.rel.SaveBlob(ctx, blob); err != nil {
		d.warn(Warning{Backend: BackendRelational, Op: "save", Err: err})
	}
}

type blobResult struct {
	blob []byte
	ok   bool
	err  error
}

func (d *Dual) loadRelational(ctx context.Context) ([]model.CheckList, bool) {
	if d.rel == nil || !d.rel.Available() {
		return nil, false
	}
	if err := ctx.Err(); err != nil {
		d.warn(Warning{Backend: BackendRelational, Op: "load", Err: err})
		return nil, false
	}
	if err := d.Flush(ctx); err != nil {
		d.warn(Warning{Backend: BackendRelational, Op: "load", Err: err})
		return nil, false
	}
	ch := make(chan blobResult, 1)
	go func() {
		blob, ok, err := d.rel.LoadBlob(ctx)
		ch <- blobResult{blob: blob, ok: ok, err: err}
	}()
	var r blobResult
	select {
	case r = <-ch:
	case <-ctx.Done():
		d.warn(Warning{Backend: BackendRelational, Op: "load", Err: ctx.Err()})
		return nil, false
	}
	if r.err != nil {
		d.warn(Warning{Backend: BackendRelational, Op: "load", Err: r.err})
		return nil, false
	}
	if !r.ok {
		return nil, false
	}
	lists, err := Decode(r.blob)
	if err != nil {
		d.warn(Warning{Backend: BackendRelational, Op: "decode", Err: err})
		return nil, false
	}
	return lists, lists != nil
}

func (d *Dual) loadFlat() ([]model.CheckList, bool) {
	if d.flat == nil {
		return nil, false
	}
	blob, ok, err := d.flat.Get(FlatKey)
	if err != nil {
		d.warn(Warning{Backend: BackendFlat, Op: "load", Err: err})
		return nil, false
	}
	if !ok {
		return nil, false
	}
	lists, err := Decode(blob)
	if err != nil {
		d.warn(Warning{Backend: BackendFlat, Op: "decode", Err: err})
		return nil, false
	}
	return lists, lists != nil
}

func (d *Dual) warn(w Warning) {
	d.log.Warn("persistence backend failed",
		slog.String("backend", w.Backend),
		slog.String("op", w.Op),
		slog.Any("error", w.Err),
	)
	if d.onWarn != nil {
		d.onWarn(w)
	}
}
