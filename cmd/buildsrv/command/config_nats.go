package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudbuild/internal/propfeed"
)

type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		}
	}
	if n.Port < 0 || n.Port > 65535 {
		el.Add(fmt.Errorf("port %d out of range", n.Port))
	}

	return el.Err()
}

func (n *NatsConfig) buildNatsServer() (*propfeed.NatsServer, error) {
	var opts []propfeed.NatsServerOpt
	if n.StartTimeout != "" {
		d, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, propfeed.WithStartTimeout(d))
	}
	if n.Host != "" {
		opts = append(opts, propfeed.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, propfeed.WithPort(n.Port))
	}

	s, err := propfeed.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
