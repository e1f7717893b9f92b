// Package api is the HTTP client for the remote todo collection.
//
// Every operation is exactly one round trip: no caching, no batching, no
// retries. Failures collapse to a single *Error per response so callers can
// show one message and move on.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/idilsaglam/todotui/internal/model"
)

// DefaultTimeout bounds a single request when the caller's context carries
// no deadline of its own.
const DefaultTimeout = 10 * time.Second

// Error is a non-2xx response from the collection.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.StatusCode, e.Message)
}

// Patch carries the fields of an update request. Nil fields are left out of
// the request body, so the server only sees what actually changed.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool { return p.Title == nil && p.Completed == nil }

// Client talks to one todo collection on behalf of one user.
type Client struct {
	baseURL string
	userID  int
	hc      *http.Client
}

// New returns a client for the collection at baseURL scoped to userID.
func New(baseURL string, userID int) *Client {
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		hc:      &http.Client{Timeout: DefaultTimeout},
	}
}

// UserID returns the fixed user id embedded in every request.
func (c *Client) UserID() int { return c.userID }

// List fetches the user's records, in server order.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	url := fmt.Sprintf("%s/todos?userId=%d", c.baseURL, c.userID)
	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, url, nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Create persists a new record and returns it with the server-assigned id.
func (c *Client) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	todo.ID = model.PlaceholderID // the server assigns the real one
	var created model.Todo
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/todos", todo, &created); err != nil {
		return model.Todo{}, err
	}
	return created, nil
}

// Update sends the changed fields of record id. The server replies with an
// acknowledgement only; the caller merges the patch locally.
func (c *Client) Update(ctx context.Context, id int, patch Patch) error {
	url := c.baseURL + "/todos/" + strconv.Itoa(id)
	return c.do(ctx, http.MethodPatch, url, patch, nil)
}

// Delete removes record id.
func (c *Client) Delete(ctx context.Context, id int) error {
	url := c.baseURL + "/todos/" + strconv.Itoa(id)
	return c.do(ctx, http.MethodDelete, url, nil, nil)
}

func (c *Client) do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError pulls a human-readable message out of an error response.
// Servers in the wild answer with {"message": ...} or {"error": ...};
// anything else falls back to the status text.
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(b, &envelope); err == nil {
		if envelope.Message != "" {
			apiErr.Message = envelope.Message
		} else if envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
	}
	return apiErr
}
