package reso

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// defaultTimeout is applied when no timeout option is given.
const defaultTimeout = 30 * time.Second

// Accept header values per endpoint type. Queries speak JSON, the /$count
// endpoint returns a bare integer as text, and $metadata is an EDMX XML
// document.
const (
	acceptJSON = "application/json"
	acceptText = "text/plain"
	acceptXML  = "application/xml"
)

// Client represents a RESO Web API client.
type Client struct {
	baseURL    string
	token      string
	datasetID  string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new RESO client for the given service root,
// authenticating every request with the bearer token. Construction never
// touches the network; use TestConnection to probe credentials.
func NewClient(baseURL, token string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrConfig)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: bearer token is required", ErrConfig)
	}

	options := clientOptions{
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(&options)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		datasetID:  options.datasetID,
		userAgent:  options.userAgent,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BuildURL returns the absolute URL for a serialized query string,
// inserting the dataset segment when one is configured. Exposed so
// callers can show the exact request a query produces without sending it.
func (c *Client) BuildURL(query string) string {
	if c.datasetID != "" {
		return fmt.Sprintf("%s/%s/%s", c.baseURL, c.datasetID, query)
	}
	return fmt.Sprintf("%s/%s", c.baseURL, query)
}

// doRequest performs an authenticated GET and returns the response body
// and headers. Non-2xx responses are mapped to typed errors.
func (c *Client) doRequest(ctx context.Context, rawURL, accept string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("url", rawURL).
		Str("accept", accept).
		Msg("Sending RESO API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, errorFromStatus(resp.StatusCode, body)
	}

	return body, resp.Header, nil
}

// Execute runs a standard query and returns the decoded OData envelope.
func (c *Client) Execute(ctx context.Context, query *Query) (*ODataResponse, error) {
	body, _, err := c.doRequest(ctx, c.BuildURL(query.ToODataString()), acceptJSON)
	if err != nil {
		return nil, err
	}

	var response ODataResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrParse, err)
	}

	c.logger.Debug().
		Str("resource", query.Resource()).
		Int("records", len(response.Value)).
		Msg("Query executed")

	return &response, nil
}

// ExecuteByKey runs a key-access query and returns the single addressed
// record. The server responds with the entity object itself rather than a
// collection envelope.
func (c *Client) ExecuteByKey(ctx context.Context, query *Query) (Record, error) {
	body, _, err := c.doRequest(ctx, c.BuildURL(query.ToODataString()), acceptJSON)
	if err != nil {
		return nil, err
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrParse, err)
	}

	c.logger.Debug().
		Str("resource", query.Resource()).
		Str("key", query.Key()).
		Msg("Key access query executed")

	return record, nil
}

// ExecuteCount runs a count-only query against the /$count endpoint and
// returns the count. The endpoint replies with a bare integer in plain
// text, not JSON.
func (c *Client) ExecuteCount(ctx context.Context, query *Query) (int64, error) {
	body, _, err := c.doRequest(ctx, c.BuildURL(query.ToODataString()), acceptText)
	if err != nil {
		return 0, err
	}

	text := string(body)
	count, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse count '%s': %v", ErrParse, text, err)
	}

	c.logger.Debug().
		Str("resource", query.Resource()).
		Int64("count", count).
		Msg("Count query executed")

	return count, nil
}

// FetchMetadata retrieves the $metadata EDMX document as raw XML. Use
// ParseMetadata to extract the entity schema from it.
func (c *Client) FetchMetadata(ctx context.Context) (string, error) {
	body, _, err := c.doRequest(ctx, c.BuildURL("$metadata"), acceptXML)
	if err != nil {
		return "", err
	}

	c.logger.Debug().
		Int("bytes", len(body)).
		Msg("Metadata fetched")

	return string(body), nil
}

// ExecuteReplication runs a replication query and returns the first page
// of the cursor walk.
func (c *Client) ExecuteReplication(ctx context.Context, query *ReplicationQuery) (*ReplicationResponse, error) {
	return c.fetchReplicationPage(ctx, c.BuildURL(query.ToODataString()))
}

// ExecuteNextLink fetches the next page of a replication walk from a
// continuation URL taken from a previous page's NextLink. The URL is used
// verbatim.
func (c *Client) ExecuteNextLink(ctx context.Context, nextLink string) (*ReplicationResponse, error) {
	return c.fetchReplicationPage(ctx, nextLink)
}

func (c *Client) fetchReplicationPage(ctx context.Context, rawURL string) (*ReplicationResponse, error) {
	body, header, err := c.doRequest(ctx, rawURL, acceptJSON)
	if err != nil {
		return nil, err
	}

	// The replication continuation URL travels in response headers, not
	// in the body: "next" is the preferred header, "link" the fallback.
	nextLink := header.Get("next")
	if nextLink == "" {
		nextLink = header.Get("link")
	}

	var response ODataResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrParse, err)
	}

	page := NewReplicationResponse(response.Value, nextLink)

	c.logger.Debug().
		Int("records", page.RecordCount).
		Bool("has_more", page.HasMore()).
		Msg("Replication page fetched")

	return page, nil
}

// TestConnection verifies connectivity and credentials with a minimal
// one-record query against the Property resource.
func (c *Client) TestConnection(ctx context.Context) error {
	query, err := NewQueryBuilder("Property").Top(1).Build()
	if err != nil {
		return err
	}

	if _, err := c.Execute(ctx, query); err != nil {
		return fmt.Errorf("failed to connect to RESO API: %w", err)
	}

	return nil
}
