package command

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mudbuild/internal/buildapi"
	"github.com/pixil98/go-mudbuild/internal/props"
)

const (
	ModeEdit = "edit"
	ModeDump = "dump"

	PageLocation = "location"
	PageWorld    = "world"
	PageAll      = "all"
)

type Config struct {
	ServerURL      string   `json:"server_url"`
	FeedURL        string   `json:"feed_url"`
	Page           string   `json:"page"`
	Location       string   `json:"location"`
	Tables         []string `json:"tables"`
	Mode           string   `json:"mode"`
	DumpWidth      int      `json:"dump_width"`
	RequestTimeout string   `json:"request_timeout"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.ServerURL == "" {
		el.Add(fmt.Errorf("server_url is required"))
	} else if u, err := url.Parse(c.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		el.Add(fmt.Errorf("server_url %q must be an http or https url", c.ServerURL))
	}

	if c.FeedURL != "" {
		if u, err := url.Parse(c.FeedURL); err != nil || (u.Scheme != "nats" && u.Scheme != "ws" && u.Scheme != "wss") {
			el.Add(fmt.Errorf("feed_url %q must be a nats, ws or wss url", c.FeedURL))
		}
	}

	switch c.Page {
	case "":
		if len(c.Tables) == 0 {
			el.Add(fmt.Errorf("page or at least one table is required"))
		}
	case PageLocation:
		if _, err := props.ParseTableKey(c.Location); err != nil {
			el.Add(fmt.Errorf("location: %w", err))
		} else if c.Location[0] == '$' {
			el.Add(fmt.Errorf("location %q must be a location id", c.Location))
		}
	case PageWorld, PageAll:
	default:
		el.Add(fmt.Errorf("page %q must be %q, %q or %q", c.Page, PageLocation, PageWorld, PageAll))
	}
	for i, t := range c.Tables {
		if _, err := props.ParseTableKey(t); err != nil {
			el.Add(fmt.Errorf("table %d: %w", i, err))
		}
	}

	switch c.Mode {
	case "", ModeEdit, ModeDump:
	default:
		el.Add(fmt.Errorf("mode %q must be %q or %q", c.Mode, ModeEdit, ModeDump))
	}

	if c.DumpWidth < 0 {
		el.Add(fmt.Errorf("dump_width must not be negative"))
	}

	if c.RequestTimeout != "" {
		_, err := time.ParseDuration(c.RequestTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing request_timeout: %w", err))
		}
	}

	return el.Err()
}

// tableKeys lists the tables to open: those of the page first, then any
// named explicitly. The all page is resolved against the server when the
// session starts.
func (c *Config) tableKeys() ([]props.TableKey, error) {
	var names []string
	switch c.Page {
	case PageLocation:
		names = append(names, c.Location)
	case PageWorld:
		names = append(names, props.RealmTable.String(), props.PlayerTable.String())
	}
	names = append(names, c.Tables...)

	keys := make([]props.TableKey, 0, len(names))
	for _, t := range names {
		key, err := props.ParseTableKey(t)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return dedupeKeys(keys), nil
}

func dedupeKeys(keys []props.TableKey) []props.TableKey {
	out := make([]props.TableKey, 0, len(keys))
	seen := map[props.TableKey]bool{}
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func (c *Config) buildClient() (*buildapi.Client, error) {
	var opts []buildapi.ClientOpt
	if c.RequestTimeout != "" {
		d, err := time.ParseDuration(c.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing request_timeout: %w", err)
		}
		opts = append(opts, buildapi.WithHTTPClient(&http.Client{Timeout: d}))
	}

	return buildapi.NewClient(c.ServerURL, opts...)
}
