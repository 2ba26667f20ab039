package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/pixil98/go-mudbuild/internal/buildapi"
	"github.com/pixil98/go-mudbuild/internal/display"
	"github.com/pixil98/go-mudbuild/internal/editor"
	"github.com/pixil98/go-mudbuild/internal/propfeed"
	"github.com/pixil98/go-mudbuild/internal/props"
	"github.com/pixil98/go-mudbuild/internal/tui"
)

type propSource interface {
	Session(ctx context.Context) error
	Tables(ctx context.Context) ([]props.TableKey, error)
	Props(ctx context.Context, key props.TableKey) ([]props.Record, error)
}

// resolveKeys appends every table the server holds when all is set.
func resolveKeys(ctx context.Context, src propSource, keys []props.TableKey, all bool) ([]props.TableKey, error) {
	if !all {
		return keys, nil
	}
	more, err := src.Tables(ctx)
	if err != nil {
		return nil, err
	}
	return dedupeKeys(append(append([]props.TableKey{}, keys...), more...)), nil
}

type feedReader interface {
	Start(ctx context.Context) error
}

// newFeedReader picks the feed client for the url's scheme.
func newFeedReader(feedURL string, handler func(propfeed.Event)) (feedReader, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parsing feed url: %w", err)
	}
	switch u.Scheme {
	case "nats":
		return propfeed.NewSubscriber(feedURL, handler), nil
	case "ws", "wss":
		return buildapi.NewFeedWatcher(feedURL, handler), nil
	default:
		return nil, fmt.Errorf("unsupported feed url scheme %q", u.Scheme)
	}
}

// editSession loads the configured tables into the terminal editor and
// keeps them current from the change feed until the user quits.
type editSession struct {
	client  propSource
	ed      *editor.Editor
	ui      *tui.App
	keys    []props.TableKey
	all     bool
	feedURL string
}

func newEditSession(client propSource, ed *editor.Editor, ui *tui.App, keys []props.TableKey, all bool, feedURL string) *editSession {
	return &editSession{client: client, ed: ed, ui: ui, keys: keys, all: all, feedURL: feedURL}
}

func (s *editSession) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.client.Session(ctx); err != nil {
		return err
	}

	keys, err := resolveKeys(ctx, s.client, s.keys, s.all)
	if err != nil {
		return err
	}

	// The ui is not running yet, so seeding happens on this goroutine.
	for _, key := range keys {
		recs, err := s.client.Props(ctx, key)
		if err != nil {
			return err
		}
		s.ed.GetOrCreateTable(key, s.ui.NewTable(key))
		if err := s.ed.Seed(key, recs); err != nil {
			return fmt.Errorf("seeding %s: %w", key.String(), err)
		}
	}

	if s.feedURL != "" {
		feed, err := newFeedReader(s.feedURL, s.onEvent)
		if err != nil {
			return err
		}
		go func() {
			if err := feed.Start(ctx); err != nil {
				slog.WarnContext(ctx, "change feed stopped", "error", err)
			}
		}()
	}

	return s.ui.Start(ctx)
}

// onEvent applies a write from the feed. Rows with unsaved edits keep
// them.
func (s *editSession) onEvent(ev propfeed.Event) {
	s.ed.Post(func() {
		if _, ok := s.ed.Table(ev.Table); !ok {
			return
		}
		if err := s.ed.ApplyRemote(ev.Table, ev.Prop); err != nil {
			slog.Warn("applying feed event", "table", ev.Table.String(), "id", ev.Prop.ID, "error", err)
		}
	})
}

// dumpSession prints the configured tables and returns.
type dumpSession struct {
	client propSource
	keys   []props.TableKey
	all    bool
	out    io.Writer
	width  int
}

func newDumpSession(client propSource, keys []props.TableKey, all bool, out io.Writer, width int) *dumpSession {
	return &dumpSession{client: client, keys: keys, all: all, out: out, width: width}
}

func (s *dumpSession) Start(ctx context.Context) error {
	keys, err := resolveKeys(ctx, s.client, s.keys, s.all)
	if err != nil {
		return err
	}

	tables := make([]display.DumpTable, 0, len(keys))
	for _, key := range keys {
		recs, err := s.client.Props(ctx, key)
		if err != nil {
			return err
		}
		tables = append(tables, display.DumpTable{Key: key, Props: recs})
	}

	return display.Dump(s.out, tables, s.width)
}
