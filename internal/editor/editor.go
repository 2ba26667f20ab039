package editor

import (
	"log/slog"

	"github.com/pixil98/go-mudbuild/internal/props"
)

// Editor holds every property table open in one editing session. All of
// its methods must be called from a single event thread, the one the
// poster given to WithPoster runs callbacks on.
type Editor struct {
	saver  Saver
	tables map[props.TableKey]*Table
	order  []*Table

	poster func(func())
}

type EditorOpt func(*Editor)

// WithPoster hands completion callbacks to fn, which must run them on the
// event thread. Without a poster the editor cannot save.
func WithPoster(fn func(func())) EditorOpt {
	return func(e *Editor) {
		e.poster = fn
	}
}

func NewEditor(saver Saver, opts ...EditorOpt) *Editor {
	e := &Editor{
		saver:  saver,
		tables: map[props.TableKey]*Table{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Post schedules fn on the event thread. It is dropped when no poster is
// configured.
func (e *Editor) Post(fn func()) {
	if e.poster == nil {
		slog.Error("dropping editor callback without a poster")
		return
	}
	e.poster(fn)
}

// GetOrCreateTable returns the table for key, creating an empty one bound
// to view if none exists yet. A nil view renders nothing.
func (e *Editor) GetOrCreateTable(key props.TableKey, view TableView) *Table {
	if t, ok := e.tables[key]; ok {
		return t
	}

	if view == nil {
		view = headlessTable{}
	}

	t := &Table{
		key:  key,
		view: view,
		rows: map[string]*Row{},
	}
	e.tables[key] = t
	e.order = append(e.order, t)
	return t
}

// Table returns the table for key if one has been created.
func (e *Editor) Table(key props.TableKey) (*Table, bool) {
	t, ok := e.tables[key]
	return t, ok
}

// DirtyRows returns every row with unsaved edits.
func (e *Editor) DirtyRows() []*Row {
	var out []*Row
	for _, t := range e.order {
		for _, r := range t.Rows() {
			if r.Dirty() {
				out = append(out, r)
			}
		}
	}
	return out
}

func (e *Editor) table(key props.TableKey) (*Table, error) {
	t, ok := e.tables[key]
	if !ok {
		slog.Error("property table not found", "table", key.String())
		return nil, ErrTableNotFound
	}
	return t, nil
}

func (e *Editor) row(key props.TableKey, id string) (*Row, error) {
	t, err := e.table(key)
	if err != nil {
		return nil, err
	}
	r, ok := t.rows[id]
	if !ok {
		slog.Error("property row not found", "table", key.String(), "id", id)
		return nil, ErrRowNotFound
	}
	return r, nil
}
