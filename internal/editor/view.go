package editor

import "github.com/pixil98/go-mudbuild/internal/props"

// FieldRef identifies one sub-field input. Views hand it back with input
// events so they can be routed to the owning row.
type FieldRef struct {
	Table   props.TableKey
	PropKey string
	PropID  string
	Field   string
}

// CellField is one sub-field input to render.
type CellField struct {
	Ref     FieldRef
	Label   string
	Content string
}

// TableView is the rendering target of a table.
type TableView interface {
	AppendRow(id string) RowView
}

// RowView is the rendering target of a row. Rows created by BuildCell
// start with the warning and button regions hidden.
type RowView interface {
	SetKey(key string)
	BuildCell(kind props.Kind, fields []CellField)
	SetFieldText(field, text string)
	SetModified(modified bool)
	ShowButtons()
	HideButtons()
	SetWarningText(msg string)
	ShowWarning()
	// HideWarning must call done on the editor's event thread once the
	// region is hidden.
	HideWarning(done func())
}

type headlessTable struct{}

func (headlessTable) AppendRow(string) RowView { return headlessRow{} }

type headlessRow struct{}

func (headlessRow) SetKey(string)                     {}
func (headlessRow) BuildCell(props.Kind, []CellField) {}
func (headlessRow) SetFieldText(string, string)       {}
func (headlessRow) SetModified(bool)                  {}
func (headlessRow) ShowButtons()                      {}
func (headlessRow) HideButtons()                      {}
func (headlessRow) SetWarningText(string)             {}
func (headlessRow) ShowWarning()                      {}
func (headlessRow) HideWarning(done func())           { done() }
