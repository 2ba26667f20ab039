package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/go-mudbuild/internal/editor"
	"github.com/pixil98/go-mudbuild/internal/props"
	"github.com/rivo/tview"
)

const (
	keyWidth   = 24
	labelWidth = 28
)

var _ editor.RowView = (*RowView)(nil)

type fieldInput struct {
	ref  editor.FieldRef
	area *tview.TextArea
}

// RowView renders one property: its key, a type selector, one text area
// per sub-field and the hidden control and warning lines.
type RowView struct {
	table *TableView
	id    string
	key   string

	box     *tview.Flex
	header  *tview.Flex
	keyText *tview.TextView
	kinds   *tview.DropDown
	cell    *tview.Flex
	buttons *tview.Flex
	revert  *tview.Button
	save    *tview.Button
	warning *tview.TextView

	fields   map[string]*fieldInput
	order    []string
	kind     props.Kind
	modified bool

	buttonsShown bool
	warningShown bool

	// programmatic is set while the row updates its own widgets, so change
	// callbacks do not echo back as user edits.
	programmatic bool
}

func newRowView(t *TableView, id string) *RowView {
	r := &RowView{
		table:  t,
		id:     id,
		fields: map[string]*fieldInput{},
	}

	r.keyText = tview.NewTextView().SetDynamicColors(true)

	opts := make([]string, len(props.Kinds))
	for i, k := range props.Kinds {
		opts[i] = title(string(k))
	}
	r.kinds = tview.NewDropDown()
	r.kinds.SetOptions(opts, func(_ string, idx int) {
		if r.programmatic || idx < 0 || idx >= len(props.Kinds) {
			return
		}
		t.app.changeType(r, props.Kinds[idx])
	})

	r.header = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(r.keyText, keyWidth, 0, false).
		AddItem(r.kinds, 0, 1, false)

	r.cell = tview.NewFlex().SetDirection(tview.FlexRow)

	r.revert = tview.NewButton("Revert").SetSelectedFunc(func() { t.app.revert(r) })
	r.save = tview.NewButton("Save").SetSelectedFunc(func() { t.app.save(r) })
	r.buttons = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, keyWidth, 0, false).
		AddItem(r.revert, 10, 0, false).
		AddItem(nil, 2, 0, false).
		AddItem(r.save, 8, 0, false).
		AddItem(nil, 0, 1, false)

	r.warning = tview.NewTextView()
	r.warning.SetTextColor(tcell.ColorRed)

	r.box = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(r.header, 1, 0, false).
		AddItem(r.cell, 0, 0, false).
		AddItem(r.buttons, 0, 0, false).
		AddItem(r.warning, 0, 0, false)

	t.app.owners[r.kinds] = r
	t.app.owners[r.revert] = r
	t.app.owners[r.save] = r
	return r
}

func (r *RowView) SetKey(key string) {
	r.key = key
	r.drawKey()
}

func (r *RowView) SetModified(modified bool) {
	r.modified = modified
	r.drawKey()
}

func (r *RowView) drawKey() {
	text := "[::b]" + tview.Escape(r.key) + "[::-]"
	if r.modified {
		text += " [yellow]*[-]"
	}
	r.keyText.SetText(text)
}

// BuildCell replaces the sub-field inputs. The control and warning lines
// come back hidden.
func (r *RowView) BuildCell(kind props.Kind, fields []editor.CellField) {
	r.programmatic = true
	defer func() { r.programmatic = false }()

	for _, f := range r.fields {
		delete(r.table.app.owners, f.area)
	}
	r.cell.Clear()
	r.fields = make(map[string]*fieldInput, len(fields))
	r.order = r.order[:0]
	r.kind = kind

	for i, k := range props.Kinds {
		if k == kind {
			r.kinds.SetCurrentOption(i)
			break
		}
	}

	for _, f := range fields {
		in := r.newField(f)
		r.fields[f.Ref.Field] = in
		r.order = append(r.order, f.Ref.Field)
		r.cell.AddItem(in.area, fieldHeight(kind), 0, false)
		r.table.app.owners[in.area] = r
	}

	r.buttonsShown = false
	r.warningShown = false
	r.warning.SetText("")
	r.layout()
}

func (r *RowView) newField(f editor.CellField) *fieldInput {
	in := &fieldInput{ref: f.Ref, area: tview.NewTextArea()}
	in.area.SetLabel(tview.Escape(f.Label)).
		SetLabelWidth(labelWidth).
		SetText(f.Content, false)
	in.area.SetChangedFunc(func() { r.fieldChanged(f.Ref.Field) })
	return in
}

func (r *RowView) fieldChanged(field string) {
	in, ok := r.fields[field]
	if !ok || r.programmatic {
		return
	}
	r.table.app.edit(in.ref, in.area.GetText())
}

func (r *RowView) SetFieldText(field, text string) {
	in, ok := r.fields[field]
	if !ok || in.area.GetText() == text {
		return
	}

	r.programmatic = true
	defer func() { r.programmatic = false }()
	in.area.SetText(text, false)
}

func (r *RowView) ShowButtons() {
	r.buttonsShown = true
	r.layout()
}

func (r *RowView) HideButtons() {
	r.buttonsShown = false
	if f := r.table.app.app.GetFocus(); f == r.revert || f == r.save {
		r.table.app.app.SetFocus(r.kinds)
	}
	r.layout()
}

func (r *RowView) SetWarningText(msg string) {
	r.warning.SetText(msg)
}

func (r *RowView) ShowWarning() {
	r.warningShown = true
	r.layout()
}

// HideWarning collapses the warning line. It runs on the event goroutine,
// so done is called right away.
func (r *RowView) HideWarning(done func()) {
	r.warningShown = false
	r.layout()
	done()
}

func (r *RowView) layout() {
	r.box.ResizeItem(r.cell, fieldHeight(r.kind)*len(r.order), 0)
	r.box.ResizeItem(r.buttons, boolHeight(r.buttonsShown), 0)
	r.box.ResizeItem(r.warning, boolHeight(r.warningShown), 0)
	r.table.resize(r)
}

func (r *RowView) height() int {
	return 1 + fieldHeight(r.kind)*len(r.order) + boolHeight(r.buttonsShown) + boolHeight(r.warningShown)
}

func (r *RowView) focusables() []tview.Primitive {
	out := []tview.Primitive{r.kinds}
	for _, k := range r.order {
		out = append(out, r.fields[k].area)
	}
	if r.buttonsShown {
		out = append(out, r.revert, r.save)
	}
	return out
}

func fieldHeight(kind props.Kind) int {
	switch kind {
	case props.KindText, props.KindCode:
		return 4
	default:
		return 2
	}
}

func boolHeight(b bool) int {
	if b {
		return 1
	}
	return 0
}
