package editor

import "github.com/pixil98/go-mudbuild/internal/props"

// Table is the ordered set of property rows attached to one scope.
type Table struct {
	key  props.TableKey
	view TableView

	ids  []string
	rows map[string]*Row
}

func (t *Table) Key() props.TableKey {
	return t.key
}

// Row returns the row for a property id.
func (t *Table) Row(id string) (*Row, bool) {
	r, ok := t.rows[id]
	return r, ok
}

// Rows returns the rows in display order.
func (t *Table) Rows() []*Row {
	out := make([]*Row, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *Table) Len() int {
	return len(t.ids)
}

// Row is the editing state of one property.
type Row struct {
	table props.TableKey
	id    string
	key   string

	// saved is the last record known to be on the server; revert
	// restores it.
	saved props.Record

	kind   props.Kind
	fields map[string]string
	order  []string

	// placeholder is the original payload of a row whose type was not
	// recognized.
	placeholder props.Value

	dirty   bool
	warning string

	buttonsShown bool
	warningShown bool

	view RowView
}

func (r *Row) ID() string {
	return r.id
}

func (r *Row) Key() string {
	return r.key
}

func (r *Row) Table() props.TableKey {
	return r.table
}

// Kind is the value type the row is currently rendered as.
func (r *Row) Kind() props.Kind {
	return r.kind
}

func (r *Row) Saved() props.Record {
	return r.saved
}

func (r *Row) Dirty() bool {
	return r.dirty
}

func (r *Row) Warning() string {
	return r.warning
}

// Field returns the current content of a sub-field.
func (r *Row) Field(key string) (string, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// FieldKeys returns the row's sub-field keys in display order.
func (r *Row) FieldKeys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Value builds the value the row's current contents would be saved as. A
// placeholder row keeps its original payload until a type is picked.
func (r *Row) Value() props.Value {
	if r.placeholder != nil {
		return r.placeholder
	}
	return props.FromFields(r.kind, r.fields)
}
