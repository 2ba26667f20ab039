package propfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Subscriber connects to a build server's change feed and hands every
// event to a handler. The handler runs on the NATS delivery goroutine.
type Subscriber struct {
	url     string
	handler func(Event)
}

func NewSubscriber(url string, handler func(Event)) *Subscriber {
	return &Subscriber{url: url, handler: handler}
}

func (s *Subscriber) Start(ctx context.Context) error {
	conn, err := nats.Connect(s.url, nats.Name("buildedit"))
	if err != nil {
		return fmt.Errorf("connecting to change feed: %w", err)
	}
	defer conn.Close()

	sub, err := conn.Subscribe(AllSubjects, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.WarnContext(ctx, "dropping malformed feed event", "subject", msg.Subject, "error", err)
			return
		}
		s.handler(ev)
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", AllSubjects, err)
	}

	slog.InfoContext(ctx, "subscribed to change feed", "url", s.url)

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		slog.Warn("unsubscribing from change feed", "error", err)
	}
	return nil
}
