// Package clicktime is a minimal client for the ClickTime v2 REST API.
package clicktime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/clicktime-assistant/internal/model"
)

// ErrNoToken is returned when no API token is configured.
var ErrNoToken = errors.New("clicktime: API token is not set (export CLICKTIME_AUTH_TOKEN)")

// taskControlLimit is large enough to fetch every control in one page.
const taskControlLimit = 50000

// APIError is a non-2xx response from ClickTime.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clicktime API error %d: %s", e.Status, e.Body)
}

// Client is an authenticated ClickTime API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL that authenticates with token. base may
// be nil; it supplies the underlying transport and timeouts.
func New(ctx context.Context, baseURL, token string, base *http.Client) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	// ClickTime expects "Authorization: Token <token>"; oauth2 uses the
	// token type verbatim as the scheme.
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Token"})
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: oauth2.NewClient(ctx, ts),
	}, nil
}

type taskControlsResponse struct {
	Data []model.TaskControl `json:"data"`
}

// TaskControls lists every (job, task) eligibility pair for active jobs and
// tasks.
func (c *Client) TaskControls(ctx context.Context) ([]model.TaskControl, error) {
	q := url.Values{
		"JobIsActive":  {"true"},
		"TaskIsActive": {"true"},
		"limit":        {fmt.Sprint(taskControlLimit)},
	}
	endpoint := c.baseURL + "/v2/Me/Jobs/TaskControls?" + q.Encode()

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var page taskControlsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decoding task controls: %w", err)
	}
	if page.Data == nil {
		return nil, fmt.Errorf("decoding task controls: response has no data")
	}
	return page.Data, nil
}

// CreateTimeEntry submits one time entry.
func (c *Client) CreateTimeEntry(ctx context.Context, entry model.TimeEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding time entry: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, c.baseURL+"/v2/Me/TimeEntries", payload)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clicktime request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
