package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/digitalbridge/mongoes/internal/db"
)

// Compile-time check: Client is a search index.
var _ db.SearchIndex = (*Client)(nil)

// Config holds connection parameters for Elasticsearch.
type Config struct {
	Addrs    []string
	Username string
	Password string
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
	// MaxRetries bounds retries on 502/503/504 and network errors. Zero disables retries.
	MaxRetries int
}

// Client implements db.SearchIndex on go-elasticsearch.
type Client struct {
	es *elasticsearch.Client
}

// NewClient builds a client authenticating with basic auth on every request.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    cfg.Transport,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.MaxRetries == 0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Client{es: es}, nil
}

// Ping checks that the cluster answers.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	return finish(db.OpPing, res, err, nil)
}

// finish closes the response, maps failures and decodes the body into out when non-nil.
func finish(op string, res *esapi.Response, err error, out any) error {
	if err != nil {
		return transportError(op, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(op, res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &db.Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return bytes.NewReader(data), nil
}
