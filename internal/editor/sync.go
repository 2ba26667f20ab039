package editor

import (
	"bytes"

	"github.com/pixil98/go-mudbuild/internal/props"
)

// Reconcile brings the table's row for rec up to date, creating it on
// first sight. Unless preserveOriginal is set, rec also becomes the row's
// revert target.
func (e *Editor) Reconcile(key props.TableKey, rec props.Record, preserveOriginal bool) error {
	t, err := e.table(key)
	if err != nil {
		return err
	}
	t.reconcile(rec, preserveOriginal, false)
	return nil
}

// RemoteChangeNotice is shown under a row with unsaved edits when someone
// else writes the same property.
const RemoteChangeNotice = "changed by another builder; revert to load their version"

// ApplyRemote brings in a write made outside this session. A row with
// unsaved edits keeps its contents and kind; only its revert target moves
// and a notice is shown under it.
func (e *Editor) ApplyRemote(key props.TableKey, rec props.Record) error {
	t, err := e.table(key)
	if err != nil {
		return err
	}
	if rec.Val == nil {
		rec.Val = props.Unrecognized{}
	}

	r, ok := t.rows[rec.ID]
	if !ok || !r.dirty {
		t.reconcile(rec, false, false)
		return nil
	}

	if r.saved.Key == rec.Key && sameValue(r.saved.Val, rec.Val) {
		return nil
	}
	r.saved = rec
	r.SetWarning(RemoteChangeNotice)
	return nil
}

// Seed reconciles an initial list of records in order.
func (e *Editor) Seed(key props.TableKey, recs []props.Record) error {
	t, err := e.table(key)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		t.reconcile(rec, false, false)
	}
	return nil
}

func (t *Table) reconcile(rec props.Record, preserveOriginal, rebuild bool) *Row {
	if rec.Val == nil {
		rec.Val = props.Unrecognized{}
	}
	kind := props.RenderKind(rec.Val)

	r, ok := t.rows[rec.ID]
	if !ok {
		r = &Row{
			table: t.key,
			id:    rec.ID,
			key:   rec.Key,
			saved: rec,
			view:  t.view.AppendRow(rec.ID),
		}
		t.ids = append(t.ids, rec.ID)
		t.rows[rec.ID] = r

		r.view.SetKey(rec.Key)
		r.buildCell(kind, rec.Val)
		return r
	}

	if !preserveOriginal {
		r.saved = rec
	}

	r.key = rec.Key
	r.view.SetKey(rec.Key)

	_, known := props.KindOf(rec.Val)
	if rebuild || r.kind != kind || (r.placeholder != nil) == known {
		r.buildCell(kind, rec.Val)
		return r
	}
	if !known {
		r.placeholder = rec.Val
	}

	for k, v := range props.FieldValues(rec.Val) {
		if _, ok := r.fields[k]; !ok {
			continue
		}
		r.fields[k] = v
		r.view.SetFieldText(k, v)
	}
	return r
}

// buildCell replaces the row's sub-fields with the schema of kind, filled
// from val.
func (r *Row) buildCell(kind props.Kind, val props.Value) {
	schema := props.Fields(kind)
	r.placeholder = nil
	if _, known := props.KindOf(val); !known {
		schema = props.Fields(props.Kind(""))
		r.placeholder = val
	}
	contents := props.FieldValues(val)

	r.kind = kind
	r.fields = make(map[string]string, len(schema))
	r.order = make([]string, 0, len(schema))

	cells := make([]CellField, 0, len(schema))
	for _, f := range schema {
		r.fields[f.Key] = contents[f.Key]
		r.order = append(r.order, f.Key)
		cells = append(cells, CellField{
			Ref:     FieldRef{Table: r.table, PropKey: r.key, PropID: r.id, Field: f.Key},
			Label:   f.Label,
			Content: contents[f.Key],
		})
	}

	r.view.BuildCell(kind, cells)

	// A fresh cell has its control regions hidden.
	r.buttonsShown = false
	r.warningShown = false
	if r.dirty {
		r.view.ShowButtons()
		r.buttonsShown = true
	}
	if r.warning != "" {
		r.view.SetWarningText(r.warning)
		r.view.ShowWarning()
		r.warningShown = true
	}
}

// sameValue reports whether a and b encode to the same payload.
func sameValue(a, b props.Value) bool {
	ab, err := props.EncodeValue(a)
	if err != nil {
		return false
	}
	bb, err := props.EncodeValue(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
