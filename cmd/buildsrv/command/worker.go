package command

import (
	"fmt"

	"github.com/pixil98/go-mudbuild/internal/propfeed"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	store, err := cfg.Storage.buildStore()
	if err != nil {
		return nil, fmt.Errorf("creating property store: %w", err)
	}

	// The change feed editors subscribe to
	feed, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	server, err := cfg.HTTP.buildServer(store, propfeed.NewPublisher(feed))
	if err != nil {
		return nil, fmt.Errorf("creating build server: %w", err)
	}

	return service.WorkerList{
		"nats": feed,
		"http": server,
	}, nil
}
