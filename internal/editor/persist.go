package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-mudbuild/internal/props"
)

// SetPropRequest is one property write.
type SetPropRequest struct {
	ID  string
	Key string
	Val props.Value
}

// Saver submits property writes to the server. The returned record is the
// server's copy of what was stored; an empty ID means the server did not
// echo one.
type Saver interface {
	SetProp(ctx context.Context, req SetPropRequest) (props.Record, error)
}

// Save submits the row's current contents. The request runs off the event
// thread; the returned channel closes once its outcome has been applied.
// Saves on the same row are not serialized; the last response to arrive
// decides the warning. Edits made while a save is in flight stay in the
// row, which remains dirty.
func (e *Editor) Save(ctx context.Context, key props.TableKey, id string) (<-chan struct{}, error) {
	r, err := e.row(key, id)
	if err != nil {
		return nil, err
	}
	if e.saver == nil {
		return nil, ErrNoSaver
	}
	if e.poster == nil {
		return nil, ErrNoPoster
	}

	req := SetPropRequest{ID: r.id, Key: r.key, Val: r.Value()}
	done := make(chan struct{})

	go func() {
		rec, err := e.saver.SetProp(ctx, req)
		e.Post(func() {
			defer close(done)
			e.saved(r, req, rec, err)
		})
	}()

	return done, nil
}

func (e *Editor) saved(r *Row, req SetPropRequest, rec props.Record, err error) {
	if err != nil {
		slog.Warn("saving property", "table", r.table.String(), "id", r.id, "error", err)
		r.SetWarning(err.Error())
		return
	}

	if rec.ID == "" {
		rec = props.Record{ID: req.ID, Key: req.Key, Val: req.Val}
	}
	if rec.ID != r.id {
		slog.Warn("save echoed a different property", "table", r.table.String(), "id", r.id, "echo", rec.ID)
		rec.ID = r.id
	}

	r.SetWarning("")
	if !sameValue(r.Value(), req.Val) {
		r.saved = rec
		return
	}

	t := e.tables[r.table]
	t.reconcile(rec, false, false)
	r.SetDirty(false)
}

// Revert restores the row to its last saved record and clears its dirty
// and warning state.
func (e *Editor) Revert(key props.TableKey, id string) error {
	r, err := e.row(key, id)
	if err != nil {
		return err
	}

	t := e.tables[key]
	t.reconcile(r.saved, false, true)
	r.SetDirty(false)
	r.SetWarning("")
	return nil
}

// ChangeType switches the row to an empty value of kind without touching
// its revert target. The row becomes dirty. Picking the row's current kind
// clears its sub-fields.
func (e *Editor) ChangeType(key props.TableKey, id string, kind props.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("changing type: unknown value type %q", kind)
	}

	r, err := e.row(key, id)
	if err != nil {
		return err
	}
	t := e.tables[key]
	t.reconcile(props.Record{ID: r.id, Key: r.key, Val: props.Empty(kind)}, true, false)
	r.SetDirty(true)
	return nil
}
