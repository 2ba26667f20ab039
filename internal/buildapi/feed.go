package buildapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-mudbuild/internal/propfeed"
	"github.com/pixil98/go-mudbuild/internal/props"
)

const feedWriteWait = 5 * time.Second

type watcher struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// feedHub fans property writes out to websocket watchers.
type feedHub struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	watchers map[*watcher]struct{}
}

func newFeedHub() *feedHub {
	return &feedHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		watchers: map[*watcher]struct{}{},
	}
}

func (h *feedHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// serve upgrades the request and holds the connection until the peer goes
// away. Watchers only receive; anything they send is discarded.
func (h *feedHub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "feed upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	wt := &watcher{conn: conn}
	h.mu.Lock()
	h.watchers[wt] = struct{}{}
	h.mu.Unlock()
	slog.InfoContext(r.Context(), "feed watcher connected", "remote", r.RemoteAddr)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(wt)
	slog.InfoContext(r.Context(), "feed watcher disconnected", "remote", r.RemoteAddr)
}

func (h *feedHub) broadcast(key props.TableKey, rec props.Record) {
	data, err := json.Marshal(propfeed.Event{Table: key, Prop: rec})
	if err != nil {
		slog.Warn("marshalling feed event", "error", err)
		return
	}

	h.mu.Lock()
	watchers := make([]*watcher, 0, len(h.watchers))
	for wt := range h.watchers {
		watchers = append(watchers, wt)
	}
	h.mu.Unlock()

	for _, wt := range watchers {
		wt.mu.Lock()
		_ = wt.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		err := wt.conn.WriteMessage(websocket.TextMessage, data)
		wt.mu.Unlock()
		if err != nil {
			slog.Warn("sending feed event", "remote", wt.conn.RemoteAddr().String(), "error", err)
			h.drop(wt)
		}
	}
}

func (h *feedHub) drop(wt *watcher) {
	h.mu.Lock()
	_, ok := h.watchers[wt]
	delete(h.watchers, wt)
	h.mu.Unlock()

	if ok {
		_ = wt.conn.Close()
	}
}

// FeedWatcher follows a build server's websocket feed and hands every
// event to a handler. The handler runs on the watcher's read goroutine.
type FeedWatcher struct {
	url     string
	dialer  *websocket.Dialer
	handler func(propfeed.Event)
}

func NewFeedWatcher(url string, handler func(propfeed.Event)) *FeedWatcher {
	return &FeedWatcher{url: url, dialer: websocket.DefaultDialer, handler: handler}
}

// Start reads events until ctx is done or the server closes the feed.
func (w *FeedWatcher) Start(ctx context.Context) error {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("connecting to feed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	slog.InfoContext(ctx, "watching change feed", "url", w.url)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading feed: %w", err)
		}

		var ev propfeed.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			slog.WarnContext(ctx, "dropping malformed feed event", "error", err)
			continue
		}
		w.handler(ev)
	}
}
