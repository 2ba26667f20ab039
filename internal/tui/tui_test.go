package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-mudbuild/internal/editor"
	"github.com/pixil98/go-mudbuild/internal/props"
	"github.com/pixil98/go-testutil"
)

var hall = props.LocationTable("hall")

func newTestApp(t *testing.T) (*App, *editor.Editor, *TableView) {
	t.Helper()

	a := NewApp()
	ed := editor.NewEditor(nil, editor.WithPoster(a.Post))
	a.Bind(ed)

	tv := a.NewTable(hall)
	ed.GetOrCreateTable(hall, tv)

	err := ed.Seed(hall, []props.Record{
		{ID: "3", Key: "desc", Val: props.Text{Text: "A long hall."}},
		{ID: "7", Key: "north", Val: props.Move{Loc: "yard"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a, ed, tv
}

func modelRow(t *testing.T, ed *editor.Editor, id string) *editor.Row {
	t.Helper()
	tbl, ok := ed.Table(hall)
	if !ok {
		t.Fatal("table not found")
	}
	r, ok := tbl.Row(id)
	if !ok {
		t.Fatalf("row %s not found", id)
	}
	return r
}

func TestSeed_BuildsRows(t *testing.T) {
	_, ed, tv := newTestApp(t)

	testutil.AssertEqual(t, "rows", len(tv.rows), 2)

	desc := tv.rows[0]
	idx, _ := desc.kinds.GetCurrentOption()
	testutil.AssertEqual(t, "desc kind option", idx, 0)
	testutil.AssertEqual(t, "desc text", desc.fields["text"].area.GetText(), "A long hall.")
	testutil.AssertEqual(t, "desc buttons", desc.buttonsShown, false)

	north := tv.rows[1]
	idx, _ = north.kinds.GetCurrentOption()
	testutil.AssertEqual(t, "north kind option", idx, 2)
	testutil.AssertEqual(t, "north fields", strings.Join(north.order, ","), "loc,text,oleave,oarrive")
	testutil.AssertEqual(t, "north loc", north.fields["loc"].area.GetText(), "yard")

	// Selecting the current option while building must not change type.
	testutil.AssertEqual(t, "desc dirty", modelRow(t, ed, "3").Dirty(), false)
	testutil.AssertEqual(t, "north dirty", modelRow(t, ed, "7").Dirty(), false)

	testutil.AssertEqual(t, "table height", tv.height(), 2+(1+4)+(1+2*4))
}

func TestRowView_EditShowsControls(t *testing.T) {
	_, ed, tv := newTestApp(t)
	r := tv.rows[0]

	r.fields["text"].area.SetText("A short hall.", false)
	r.fieldChanged("text")

	row := modelRow(t, ed, "3")
	got, _ := row.Field("text")
	testutil.AssertEqual(t, "model text", got, "A short hall.")
	testutil.AssertEqual(t, "dirty", row.Dirty(), true)
	testutil.AssertEqual(t, "buttons", r.buttonsShown, true)
	testutil.AssertEqual(t, "marked", strings.Contains(r.keyText.GetText(false), "*"), true)
	testutil.AssertEqual(t, "focusables", len(r.focusables()), 4)
}

func TestRowView_SetFieldTextIsNotAnEdit(t *testing.T) {
	_, ed, tv := newTestApp(t)

	err := ed.Reconcile(hall, props.Record{ID: "3", Key: "desc", Val: props.Text{Text: "Echoed."}}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "view text", tv.rows[0].fields["text"].area.GetText(), "Echoed.")
	testutil.AssertEqual(t, "dirty", modelRow(t, ed, "3").Dirty(), false)
	testutil.AssertEqual(t, "buttons", tv.rows[0].buttonsShown, false)
}

func TestRowView_ChangeTypeAndRevert(t *testing.T) {
	a, ed, tv := newTestApp(t)
	r := tv.rows[0]

	// A user pick from the type selector.
	r.kinds.SetCurrentOption(3)

	row := modelRow(t, ed, "3")
	testutil.AssertEqual(t, "kind", row.Kind(), props.KindEvent)
	testutil.AssertEqual(t, "dirty", row.Dirty(), true)
	testutil.AssertEqual(t, "fields", strings.Join(r.order, ","), "text,otext")
	testutil.AssertEqual(t, "buttons", r.buttonsShown, true)
	testutil.AssertEqual(t, "saved untouched", row.Saved().Val, props.Value(props.Text{Text: "A long hall."}))

	a.revert(r)

	testutil.AssertEqual(t, "reverted kind", row.Kind(), props.KindText)
	testutil.AssertEqual(t, "reverted text", r.fields["text"].area.GetText(), "A long hall.")
	testutil.AssertEqual(t, "clean", row.Dirty(), false)
	testutil.AssertEqual(t, "buttons hidden", r.buttonsShown, false)
	idx, _ := r.kinds.GetCurrentOption()
	testutil.AssertEqual(t, "option", idx, 0)
}

func TestRowView_Warning(t *testing.T) {
	_, ed, tv := newTestApp(t)
	r := tv.rows[1]
	row := modelRow(t, ed, "7")

	before := tv.height()
	row.SetWarning("destination unknown")
	testutil.AssertEqual(t, "shown", r.warningShown, true)
	testutil.AssertEqual(t, "text", r.warning.GetText(false), "destination unknown")
	testutil.AssertEqual(t, "height", tv.height(), before+1)

	row.SetWarning("")
	testutil.AssertEqual(t, "hidden", r.warningShown, false)
	testutil.AssertEqual(t, "cleared", r.warning.GetText(false), "")
	testutil.AssertEqual(t, "height restored", tv.height(), before)
}

func TestApp_QuitWarnsAboutUnsaved(t *testing.T) {
	a, _, tv := newTestApp(t)
	r := tv.rows[0]

	r.fields["text"].area.SetText("Changed.", false)
	r.fieldChanged("text")

	a.quit()
	testutil.AssertEqual(t, "armed", a.quitArmed, true)
	testutil.AssertEqual(t, "status", strings.Contains(a.status.GetText(true), "1 unsaved property"), true)
}

func TestApp_Focusables(t *testing.T) {
	a, _, tv := newTestApp(t)

	ps := a.focusables()
	testutil.AssertEqual(t, "count", len(ps), 2+5)
	testutil.AssertEqual(t, "first", ps[0] == tv.rows[0].kinds, true)
	testutil.AssertEqual(t, "second", ps[1] == tv.rows[0].fields["text"].area, true)
}

func TestTableTitle(t *testing.T) {
	tests := map[string]struct {
		key props.TableKey
		exp string
	}{
		"location": {key: props.LocationTable("hall"), exp: "Location hall"},
		"realm":    {key: props.RealmTable, exp: "Realm defaults"},
		"player":   {key: props.PlayerTable, exp: "Player defaults"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "title", tableTitle(tt.key), tt.exp)
		})
	}
}

func TestApp_PostAfterStopDoesNotBlock(t *testing.T) {
	a := NewApp()
	a.markStopped()

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		// More than tview's update queue holds.
		for i := 0; i < 500; i++ {
			a.Post(func() {})
		}
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Post blocked after the ui stopped")
	}
}
