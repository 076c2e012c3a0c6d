// Package api talks to the dashboard backend: plain HTTP JSON, list reads
// returning {data, total_count}, writes echoing the confirmed entity, errors
// arriving as {error: {message}}.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"druckerei-client/utils"
)

// Client is a thin JSON client with a hard per-call timeout. Every remote
// call is bounded; a timeout is surfaced as *TimeoutError so the engine can
// roll back exactly like any other remote failure.
type Client struct {
	base    string
	httpc   *http.Client
	timeout time.Duration
}

// NewClient builds a client for the given base URL. The per-call timeout
// defaults to 15s and can be tuned with REMOTE_TIMEOUT_SECONDS.
func NewClient(base string) *Client {
	timeout := time.Duration(utils.ParseIntDefault(os.Getenv("REMOTE_TIMEOUT_SECONDS"), 15)) * time.Second
	return &Client{
		base:    strings.TrimRight(base, "/"),
		httpc:   &http.Client{},
		timeout: timeout,
	}
}

// ListResponse is the backend's list envelope.
type ListResponse[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"total_count"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// List fetches one server page of a collection.
func List[T any](ctx context.Context, c *Client, path string, q url.Values) (ListResponse[T], error) {
	var out ListResponse[T]
	body, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &RemoteError{Message: fmt.Sprintf("malformed list response: %v", err)}
	}
	return out, nil
}

// Get fetches a single entity.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return decodeEntity[T](c.do(ctx, http.MethodGet, path, nil, nil))
}

// Post creates a sub-resource or entity and returns the server-confirmed
// payload, which is authoritative over any locally computed aggregate.
func Post[T any](ctx context.Context, c *Client, path string, in any) (T, error) {
	return decodeEntity[T](c.do(ctx, http.MethodPost, path, nil, in))
}

// Put updates a resource and returns the confirmed payload.
func Put[T any](ctx context.Context, c *Client, path string, in any) (T, error) {
	return decodeEntity[T](c.do(ctx, http.MethodPut, path, nil, in))
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func decodeEntity[T any](body []byte, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &RemoteError{Message: fmt.Sprintf("malformed entity response: %v", err)}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, &RemoteError{Message: fmt.Sprintf("encode request: %v", err)}
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, &RemoteError{Message: err.Error()}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Op: method + " " + path, Timeout: c.timeout}
		}
		return nil, &RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return nil, &RemoteError{Status: resp.StatusCode, Message: msg}
	}
	return body, nil
}
