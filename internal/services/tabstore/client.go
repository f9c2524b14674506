package tabstore

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

	"github.com/SrWildman/dfs/internal/config"
	"github.com/SrWildman/dfs/internal/services"
)

const component = "tabstore"

// Client manipulates named tabs in a remote spreadsheet-like store.
type Client interface {
	// EnsureTab creates the tab if it does not already exist.
	EnsureTab(ctx context.Context, name string) error
	// ClearTab removes all values from the tab.
	ClearTab(ctx context.Context, name string) error
	// WriteRows replaces the tab contents with header plus rows starting at A1.
	WriteRows(ctx context.Context, name string, header []string, rows [][]string) error
}

// HTTPDoer abstracts the HTTP transport for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient talks to the store's REST API with bearer-token auth.
type HTTPClient struct {
	baseURL       string
	token         string
	spreadsheetID string
	httpClient    HTTPDoer
}

// NewHTTPClient builds a client from configuration.
func NewHTTPClient(cfg *config.Config) *HTTPClient {
	timeout := time.Duration(cfg.Sheets.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewHTTPClientWithDoer(cfg, &http.Client{Timeout: timeout})
}

// NewHTTPClientWithDoer builds a client around an explicit transport.
func NewHTTPClientWithDoer(cfg *config.Config, doer HTTPDoer) *HTTPClient {
	return &HTTPClient{
		baseURL:       strings.TrimRight(cfg.Sheets.BaseURL, "/"),
		token:         cfg.Sheets.APIToken,
		spreadsheetID: cfg.Sheets.SpreadsheetID,
		httpClient:    doer,
	}
}

type createTabRequest struct {
	Name string `json:"name"`
}

type writeValuesRequest struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// EnsureTab creates the tab; an already-existing tab is not an error.
func (c *HTTPClient) EnsureTab(ctx context.Context, name string) error {
	body, err := json.Marshal(createTabRequest{Name: name})
	if err != nil {
		return services.Wrap(services.ErrValidation, component, "ensure tab", "encode request", err)
	}
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/tabs", c.baseURL, url.PathEscape(c.spreadsheetID))
	status, err := c.send(ctx, http.MethodPost, endpoint, body, "ensure tab")
	if err != nil {
		if status == http.StatusConflict {
			return nil
		}
		return err
	}
	return nil
}

// ClearTab wipes all values from the tab.
func (c *HTTPClient) ClearTab(ctx context.Context, name string) error {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/tabs/%s:clear",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(name))
	_, err := c.send(ctx, http.MethodPost, endpoint, nil, "clear tab")
	return err
}

// WriteRows writes header then rows as a single A1-anchored block.
func (c *HTTPClient) WriteRows(ctx context.Context, name string, header []string, rows [][]string) error {
	values := make([][]string, 0, len(rows)+1)
	values = append(values, header)
	values = append(values, rows...)

	body, err := json.Marshal(writeValuesRequest{Range: "A1", Values: values})
	if err != nil {
		return services.Wrap(services.ErrValidation, component, "write rows", "encode request", err)
	}
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/tabs/%s/values",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(name))
	_, err = c.send(ctx, http.MethodPut, endpoint, body, "write rows")
	return err
}

// send issues one request and maps the response status to the service error
// taxonomy. It returns the HTTP status so callers can special-case specific
// codes before the mapped error.
func (c *HTTPClient) send(ctx context.Context, method, endpoint string, body []byte, operation string) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, component, operation, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, component, operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	detail := responseDetail(resp)
	return resp.StatusCode, services.Wrap(classifyStatus(resp.StatusCode), component, operation, detail, nil)
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.ErrAuthentication
	case status == http.StatusNotFound:
		return services.ErrNotFound
	case status == http.StatusTooManyRequests:
		return services.ErrRateLimit
	case status >= 500:
		return services.ErrTransient
	default:
		return services.ErrValidation
	}
}

func responseDetail(resp *http.Response) string {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	trimmed := strings.TrimSpace(string(snippet))
	if trimmed == "" {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, trimmed)
}
