package simulations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	listPath     = "/simulacoes"
	resourcePath = "/simulacao"
)

// Store is the CRUD surface of the simulations resource.
type Store interface {
	List(ctx context.Context) ([]Simulation, error)
	Create(ctx context.Context, in Input) error
	Update(ctx context.Context, id ID, in Input) error
	Delete(ctx context.Context, id ID) error
}

// Options parameterise the REST client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client talks to the simulations REST resource.
type Client struct {
	opts    Options
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient constructs a simulations client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		opts:    opts,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "simulations_client").Logger(),
	}
}

// List returns every simulation.
func (c *Client) List(ctx context.Context) ([]Simulation, error) {
	var list []Simulation
	if err := c.do(ctx, http.MethodGet, listPath, nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Simulation{}
	}
	return list, nil
}

// Create records a new simulation.
func (c *Client) Create(ctx context.Context, in Input) error {
	return c.do(ctx, http.MethodPost, resourcePath, in, nil)
}

// Update overwrites the simulation with the given id.
func (c *Client) Update(ctx context.Context, id ID, in Input) error {
	return c.do(ctx, http.MethodPut, itemPath(id), in, nil)
}

// Delete removes the simulation with the given id.
func (c *Client) Delete(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id ID) string {
	return resourcePath + "/" + url.PathEscape(string(id))
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Msg("simulations request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(payload)),
		}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

var _ Store = (*Client)(nil)
