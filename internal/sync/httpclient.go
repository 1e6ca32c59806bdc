package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FairHead/GymFit/internal/models"
)

// Client implements RemoteStore and Identity against the gymfit-server
// REST API. Requests carry the device's API key and stable user id as
// headers; the server keeps each user's aggregates separate.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
}

// Compile-time checks: Client is both the remote store and the identity
// provider.
var (
	_ RemoteStore = (*Client)(nil)
	_ Identity    = (*Client)(nil)
)

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL, apiKey, userID string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UserID returns the stable user id this client is scoped to.
func (c *Client) UserID() string { return c.userID }

// Online probes the server's health endpoint.
func (c *Client) Online(ctx context.Context) bool {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Pull fetches one aggregate; a 404 maps to ErrRemoteAbsent.
func (c *Client) Pull(ctx context.Context, routineID string) (*models.RoutineAggregate, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/routines/"+routineID, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRemoteAbsent
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var agg models.RoutineAggregate
	if err := json.NewDecoder(resp.Body).Decode(&agg); err != nil {
		return nil, fmt.Errorf("decoding aggregate: %w", err)
	}
	return &agg, nil
}

// Push uploads the aggregate wholesale.
func (c *Client) Push(ctx context.Context, agg *models.RoutineAggregate) error {
	body, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encoding aggregate: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, "/api/v1/routines/"+agg.Routine.ID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return responseError(resp)
	}
	return nil
}

// Delete removes the remote copy. A 404 is success: the copy is gone.
func (c *Client) Delete(ctx context.Context, routineID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/v1/routines/"+routineID, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent &&
		resp.StatusCode != http.StatusNotFound {
		return responseError(resp)
	}
	return nil
}

// ChangedSince lists aggregates updated after ts.
func (c *Client) ChangedSince(ctx context.Context, ts int64) ([]RemoteHead, error) {
	path := "/api/v1/routines?since=" + strconv.FormatInt(ts, 10)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var heads []RemoteHead
	if err := json.NewDecoder(resp.Body).Decode(&heads); err != nil {
		return nil, fmt.Errorf("decoding change feed: %w", err)
	}
	return heads, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-User-ID", c.userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s returned %d: %s", resp.Request.URL.Path, resp.StatusCode, bytes.TrimSpace(body))
}
