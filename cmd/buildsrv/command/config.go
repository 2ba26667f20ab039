package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudbuild/internal/buildapi"
)

type Config struct {
	HTTP    HTTPConfig    `json:"http"`
	Storage StorageConfig `json:"storage"`
	Nats    NatsConfig    `json:"nats"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.HTTP.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}

type HTTPConfig struct {
	Addr            string `json:"addr"`
	ShutdownTimeout string `json:"shutdown_timeout"`
	SecureCookies   bool   `json:"secure_cookies"`
}

func (c *HTTPConfig) validate() error {
	el := errors.NewErrorList()

	if c.ShutdownTimeout != "" {
		_, err := time.ParseDuration(c.ShutdownTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing shutdown_timeout: %w", err))
		}
	}

	return el.Err()
}

func (c *HTTPConfig) buildServer(store buildapi.PropertyStore, notifier buildapi.Notifier) (*buildapi.Server, error) {
	opts := []buildapi.ServerOpt{
		buildapi.WithNotifier(notifier),
		buildapi.WithSecureCookies(c.SecureCookies),
	}
	if c.Addr != "" {
		opts = append(opts, buildapi.WithAddr(c.Addr))
	}
	if c.ShutdownTimeout != "" {
		d, err := time.ParseDuration(c.ShutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing shutdown_timeout: %w", err)
		}
		opts = append(opts, buildapi.WithShutdownTimeout(d))
	}

	return buildapi.NewServer(store, opts...), nil
}
