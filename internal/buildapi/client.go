package buildapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pixil98/go-mudbuild/internal/editor"
	"github.com/pixil98/go-mudbuild/internal/props"
)

const defaultClientTimeout = 30 * time.Second

var _ editor.Saver = (*Client)(nil)

// Client talks to a build server on behalf of one editing session. It
// implements editor.Saver.
type Client struct {
	base *url.URL
	http *http.Client

	mu    sync.RWMutex
	token string
}

type ClientOpt func(*Client)

// WithHTTPClient replaces the underlying client. Its Jar is replaced when
// nil so the xsrf cookie is kept.
func WithHTTPClient(hc *http.Client) ClientOpt {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL string, opts ...ClientOpt) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", baseURL)
	}

	c := &Client{
		base: base,
		http: &http.Client{Timeout: defaultClientTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		c.http.Jar = jar
	}

	return c, nil
}

// Session fetches the anti-forgery token used by every write.
func (c *Client) Session(ctx context.Context) error {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodGet, PathSession, nil, nil, &resp); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	c.mu.Lock()
	c.token = resp.XSRF
	c.mu.Unlock()
	return nil
}

// Tables lists every table the server holds properties for.
func (c *Client) Tables(ctx context.Context) ([]props.TableKey, error) {
	var resp tablesResponse
	if err := c.do(ctx, http.MethodGet, PathTables, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return resp.Tables, nil
}

// Props fetches a table's properties in display order.
func (c *Client) Props(ctx context.Context, key props.TableKey) ([]props.Record, error) {
	var resp propsResponse
	q := url.Values{"table": {key.String()}}
	if err := c.do(ctx, http.MethodGet, PathProps, q, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching %s properties: %w", key.String(), err)
	}
	return resp.Props, nil
}

func (c *Client) SetProp(ctx context.Context, req editor.SetPropRequest) (props.Record, error) {
	val, err := props.EncodeValue(req.Val)
	if err != nil {
		return props.Record{}, err
	}

	form := url.Values{
		"id":  {req.ID},
		"key": {req.Key},
		"val": {string(val)},
	}

	var rec props.Record
	if err := c.post(ctx, PathSetProp, form, &rec); err != nil {
		return props.Record{}, err
	}
	return rec, nil
}

// AddProp creates a property in a table. A nil val makes an empty text
// property.
func (c *Client) AddProp(ctx context.Context, key props.TableKey, name string, val props.Value) (props.Record, error) {
	form := url.Values{
		"table": {key.String()},
		"key":   {name},
	}
	if val != nil {
		b, err := props.EncodeValue(val)
		if err != nil {
			return props.Record{}, err
		}
		form.Set("val", string(b))
	}

	var rec props.Record
	if err := c.post(ctx, PathAddProp, form, &rec); err != nil {
		return props.Record{}, err
	}
	return rec, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	c.mu.RLock()
	form.Set(XSRFName, c.token)
	c.mu.RUnlock()

	hdr := http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}
	return c.do(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()), out, hdr)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out any, headers ...http.Header) error {
	u := c.base.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for _, h := range headers {
		for k, vs := range h {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: e.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("server returned %s", resp.Status)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
