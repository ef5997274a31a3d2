package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/denoland-id/denoid/pkg/provider"
)

const (
	// DefaultBaseURL is the public Airtable API endpoint
	DefaultBaseURL = "https://api.airtable.com"
	// DefaultPageSize is the largest page Airtable serves
	DefaultPageSize = 100

	activeFormula = "{active} = 1"
	maxPages      = 1000
)

var tracer = otel.Tracer("github.com/denoland-id/denoid/pkg/provider/airtable")

// Config holds Airtable client settings
type Config struct {
	BaseURL  string
	Token    string
	BaseID   string
	Table    string
	PageSize int
	Timeout  time.Duration

	// HTTPClient overrides the transport. The bearer token is still applied.
	HTTPClient *http.Client
}

// Client reads module records from an Airtable table
type Client struct {
	baseURL  string
	baseID   string
	table    string
	pageSize int
	http     *http.Client
}

// APIError is a non-2xx response from Airtable
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("airtable: %d %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("airtable: %d %s", e.StatusCode, e.Type)
}

// NewClient creates an Airtable client
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("airtable token is required")
	}
	if cfg.BaseID == "" {
		return nil, fmt.Errorf("airtable base ID is required")
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("airtable table is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	base := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		base = cfg.HTTPClient.Transport
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   otelhttp.NewTransport(base),
		},
		Timeout: cfg.Timeout,
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		baseID:   cfg.BaseID,
		table:    cfg.Table,
		pageSize: cfg.PageSize,
		http:     httpClient,
	}, nil
}

// Name implements provider.Provider.Name
func (c *Client) Name() string {
	return "airtable"
}

type listResponse struct {
	Records []struct {
		ID     string          `json:"id"`
		Fields provider.Module `json:"fields"`
	} `json:"records"`
	Offset string `json:"offset"`
}

// ListModules implements provider.Provider.ListModules. All pages are read
// before anything is returned; a failure on any page fails the call.
func (c *Client) ListModules(ctx context.Context, q provider.Query) ([]provider.Module, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Airtable.ListModules",
		trace.WithAttributes(
			attribute.String("airtable.base", c.baseID),
			attribute.String("airtable.table", c.table),
		),
	)
	defer span.End()

	var (
		modules []provider.Module
		offset  string
	)
	for page := 0; ; page++ {
		if page >= maxPages {
			err := fmt.Errorf("airtable: pagination did not terminate after %d pages", maxPages)
			span.RecordError(err)
			span.SetStatus(codes.Error, "pagination runaway")
			return nil, err
		}

		resp, err := c.listPage(ctx, q, offset)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "list page failed")
			return nil, err
		}
		for _, r := range resp.Records {
			modules = append(modules, r.Fields)
		}
		if resp.Offset == "" {
			break
		}
		offset = resp.Offset
	}

	span.SetAttributes(attribute.Int("airtable.records", len(modules)))

	normalized, err := provider.Normalize(modules)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid records")
		return nil, err
	}
	return normalized, nil
}

// pageURL builds the list URL for one page
func (c *Client) pageURL(q provider.Query, offset string) string {
	params := url.Values{}
	fields := q.Fields
	if len(fields) == 0 {
		fields = []string{provider.FieldName, provider.FieldDesc}
	}
	for _, f := range fields {
		params.Add("fields[]", f)
	}
	if q.ActiveOnly {
		params.Set("filterByFormula", activeFormula)
	}
	if q.SortBy != "" {
		params.Set("sort[0][field]", q.SortBy)
		params.Set("sort[0][direction]", "asc")
	}
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	if offset != "" {
		params.Set("offset", offset)
	}

	return fmt.Sprintf("%s/v0/%s/%s?%s",
		c.baseURL,
		url.PathEscape(c.baseID),
		url.PathEscape(c.table),
		params.Encode(),
	)
}

func (c *Client) listPage(ctx context.Context, q provider.Query, offset string) (*listResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(q, offset), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("airtable request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read airtable response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var out listResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode airtable response: %w", err)
	}
	return &out, nil
}

// parseAPIError handles both error shapes Airtable returns:
// {"error":"NOT_FOUND"} and {"error":{"type":"...","message":"..."}}
func parseAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Type: http.StatusText(status)}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return apiErr
	}

	var typ string
	if err := json.Unmarshal(envelope.Error, &typ); err == nil {
		apiErr.Type = typ
		return apiErr
	}

	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		if detail.Type != "" {
			apiErr.Type = detail.Type
		}
		apiErr.Message = detail.Message
	}
	return apiErr
}
