package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/go-mudbuild/internal/editor"
	"github.com/pixil98/go-mudbuild/internal/props"
	"github.com/rivo/tview"
)

var _ editor.TableView = (*TableView)(nil)

// TableView is the bordered region showing one property table.
type TableView struct {
	app  *App
	key  props.TableKey
	box  *tview.Flex
	add  *tview.InputField
	rows []*RowView
}

func newTableView(a *App, key props.TableKey) *TableView {
	t := &TableView{
		app: a,
		key: key,
		box: tview.NewFlex().SetDirection(tview.FlexRow),
	}
	t.box.SetBorder(true).SetTitle(" " + tableTitle(key) + " ")

	if a.adder != nil {
		t.add = tview.NewInputField().SetLabel("New property: ").SetFieldWidth(0)
		t.add.SetDoneFunc(func(k tcell.Key) {
			if k != tcell.KeyEnter {
				return
			}
			name := strings.TrimSpace(t.add.GetText())
			if name == "" {
				return
			}
			a.add(t, name)
		})
		t.box.AddItem(t.add, 1, 0, false)
	}

	return t
}

// AppendRow adds an empty row above the new property input.
func (t *TableView) AppendRow(id string) editor.RowView {
	r := newRowView(t, id)
	t.rows = append(t.rows, r)

	if t.add != nil {
		t.box.RemoveItem(t.add)
	}
	t.box.AddItem(r.box, r.height(), 0, false)
	if t.add != nil {
		t.box.AddItem(t.add, 1, 0, false)
	}

	t.app.relayout(t)
	return r
}

func (t *TableView) resize(r *RowView) {
	t.box.ResizeItem(r.box, r.height(), 0)
	t.app.relayout(t)
}

func (t *TableView) height() int {
	h := 2
	for _, r := range t.rows {
		h += r.height()
	}
	if t.add != nil {
		h++
	}
	return h
}

func tableTitle(key props.TableKey) string {
	if key.Scope == props.ScopeLocation {
		return title(key.Scope.String()) + " " + key.Location
	}
	return title(key.Scope.String()) + " defaults"
}
