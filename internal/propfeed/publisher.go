package propfeed

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-mudbuild/internal/props"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// Publisher announces property writes on the change feed.
type Publisher struct {
	server publisher
}

func NewPublisher(server publisher) *Publisher {
	return &Publisher{server: server}
}

func (p *Publisher) Notify(key props.TableKey, rec props.Record) error {
	data, err := json.Marshal(Event{Table: key, Prop: rec})
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	return p.server.Publish(Subject(key), data)
}
