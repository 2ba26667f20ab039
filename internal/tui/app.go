package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/go-mudbuild/internal/editor"
	"github.com/pixil98/go-mudbuild/internal/props"
	"github.com/rivo/tview"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const helpText = " [black:gold]tab[-:-] next  [black:gold]ctrl-s[-:-] save  [black:gold]ctrl-q[-:-] quit "

// Adder creates new properties.
type Adder interface {
	AddProp(ctx context.Context, key props.TableKey, name string, val props.Value) (props.Record, error)
}

// App is a terminal property editor. It renders every table opened with
// NewTable and routes input back to the bound editor on tview's event
// goroutine.
type App struct {
	app    *tview.Application
	ed     *editor.Editor
	adder  Adder
	screen tcell.Screen

	root   *tview.Flex
	body   *tview.Flex
	status *tview.TextView

	tables []*TableView
	owners map[tview.Primitive]*RowView

	ctx       context.Context
	quitArmed bool

	stopped  chan struct{}
	stopOnce sync.Once
}

type AppOpt func(*App)

// WithAdder enables the new property input under each table.
func WithAdder(a Adder) AppOpt {
	return func(app *App) {
		app.adder = a
	}
}

// WithScreen draws to s instead of the terminal.
func WithScreen(s tcell.Screen) AppOpt {
	return func(app *App) {
		app.screen = s
	}
}

func NewApp(opts ...AppOpt) *App {
	a := &App{
		app:    tview.NewApplication(),
		owners:  map[tview.Primitive]*RowView{},
		ctx:     context.Background(),
		stopped: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.screen != nil {
		a.app.SetScreen(a.screen)
	}

	a.body = tview.NewFlex().SetDirection(tview.FlexRow)
	a.status = tview.NewTextView().SetDynamicColors(true).SetText(helpText)
	a.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.body, 0, 1, true).
		AddItem(a.status, 1, 0, false)

	a.app.SetInputCapture(a.capture)
	return a
}

// Post runs fn on the event goroutine and redraws. It is meant for
// editor.WithPoster. Once the UI has stopped, fn is dropped.
func (a *App) Post(fn func()) {
	select {
	case <-a.stopped:
		return
	default:
	}
	a.app.QueueUpdateDraw(fn)
}

// Bind attaches the editor that owns the model. It must be called before
// any table is created.
func (a *App) Bind(ed *editor.Editor) {
	a.ed = ed
}

// NewTable adds a bordered region for key and returns it as the table's
// view.
func (a *App) NewTable(key props.TableKey) *TableView {
	t := newTableView(a, key)
	a.tables = append(a.tables, t)
	a.body.AddItem(t.box, t.height(), 0, len(a.tables) == 1)
	return t
}

// Start runs the terminal UI until the user quits or ctx is done.
func (a *App) Start(ctx context.Context) error {
	a.ctx = ctx

	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	if first := a.focusables(); len(first) > 0 {
		a.app.SetFocus(first[0])
	}

	err := a.app.SetRoot(a.root, true).EnableMouse(true).Run()
	a.markStopped()
	if err != nil {
		return fmt.Errorf("running terminal ui: %w", err)
	}
	return nil
}

func (a *App) markStopped() {
	a.stopOnce.Do(func() { close(a.stopped) })
}

func (a *App) capture(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyTab:
		a.cycleFocus(1)
		return nil
	case tcell.KeyBacktab:
		a.cycleFocus(-1)
		return nil
	case tcell.KeyCtrlS:
		if r, ok := a.owners[a.app.GetFocus()]; ok {
			a.save(r)
		}
		return nil
	case tcell.KeyCtrlQ:
		a.quit()
		return nil
	}
	a.quitArmed = false
	return ev
}

func (a *App) quit() {
	dirty := len(a.ed.DirtyRows())
	if dirty > 0 && !a.quitArmed {
		a.quitArmed = true
		a.setStatus(fmt.Sprintf("[red]%d unsaved %s; ctrl-q again to quit", dirty, plural(dirty, "property", "properties")))
		return
	}
	a.app.Stop()
}

func (a *App) cycleFocus(step int) {
	ps := a.focusables()
	if len(ps) == 0 {
		return
	}

	cur := a.app.GetFocus()
	next := 0
	for i, p := range ps {
		if p == cur {
			next = (i + step + len(ps)) % len(ps)
			break
		}
	}
	a.app.SetFocus(ps[next])
}

func (a *App) focusables() []tview.Primitive {
	var out []tview.Primitive
	for _, t := range a.tables {
		for _, r := range t.rows {
			out = append(out, r.focusables()...)
		}
		if t.add != nil {
			out = append(out, t.add)
		}
	}
	return out
}

func (a *App) edit(ref editor.FieldRef, text string) {
	if err := a.ed.Edit(ref, text); err != nil {
		a.setStatus("[red]" + tview.Escape(err.Error()))
	}
}

func (a *App) changeType(r *RowView, kind props.Kind) {
	if err := a.ed.ChangeType(r.table.key, r.id, kind); err != nil {
		a.setStatus("[red]" + tview.Escape(err.Error()))
	}
}

func (a *App) save(r *RowView) {
	ctx := a.ctx
	done, err := a.ed.Save(ctx, r.table.key, r.id)
	if err != nil {
		a.setStatus("[red]" + tview.Escape(err.Error()))
		return
	}
	a.setStatus("saving " + tview.Escape(r.key) + "...")

	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
		a.Post(func() {
			if a.failed(r) {
				a.setStatus("[red]save of " + tview.Escape(r.key) + " failed")
				return
			}
			a.setStatus("saved " + tview.Escape(r.key))
		})
	}()
}

func (a *App) failed(r *RowView) bool {
	t, ok := a.ed.Table(r.table.key)
	if !ok {
		return false
	}
	row, ok := t.Row(r.id)
	return ok && row.Warning() != ""
}

func (a *App) revert(r *RowView) {
	if err := a.ed.Revert(r.table.key, r.id); err != nil {
		a.setStatus("[red]" + tview.Escape(err.Error()))
	}
}

func (a *App) add(t *TableView, name string) {
	if a.adder == nil {
		return
	}

	ctx := a.ctx
	go func() {
		rec, err := a.adder.AddProp(ctx, t.key, name, nil)
		a.Post(func() {
			if err != nil {
				slog.Warn("adding property", "table", t.key.String(), "key", name, "error", err)
				a.setStatus("[red]" + tview.Escape(err.Error()))
				return
			}
			if err := a.ed.Reconcile(t.key, rec, false); err != nil {
				a.setStatus("[red]" + tview.Escape(err.Error()))
				return
			}
			t.add.SetText("")
			a.setStatus("added " + tview.Escape(rec.Key))
		})
	}()
}

func (a *App) setStatus(msg string) {
	a.status.SetText(" " + msg)
}

func (a *App) relayout(t *TableView) {
	a.body.ResizeItem(t.box, t.height(), 0)
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
