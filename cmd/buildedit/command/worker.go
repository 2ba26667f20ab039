package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-mudbuild/internal/editor"
	"github.com/pixil98/go-mudbuild/internal/tui"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	keys, err := cfg.tableKeys()
	if err != nil {
		return nil, fmt.Errorf("parsing tables: %w", err)
	}

	client, err := cfg.buildClient()
	if err != nil {
		return nil, fmt.Errorf("creating build client: %w", err)
	}

	all := cfg.Page == PageAll

	if cfg.Mode == ModeDump {
		return service.WorkerList{
			"dump": newDumpSession(client, keys, all, os.Stdout, cfg.DumpWidth),
		}, nil
	}

	ui := tui.NewApp(tui.WithAdder(client))
	ed := editor.NewEditor(client, editor.WithPoster(ui.Post))
	ui.Bind(ed)

	return service.WorkerList{
		"session": newEditSession(client, ed, ui, keys, all, cfg.FeedURL),
	}, nil
}
