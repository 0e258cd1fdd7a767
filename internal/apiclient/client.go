// Package apiclient talks to the remote store API. Every method maps the
// transport result and the body-level success flag into a single error
// return so callers have one place to decide.
package apiclient

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
	"time"

	"steeze/internal/domain"
)

const (
	msgNetwork = "Network error. Please check your connection and try again."
	msgSync    = "Sync error. The server returned an unexpected response."
	maxBody    = 8 << 20
)

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// envelope is the status part every mutating endpoint returns.
type envelope struct {
	Success *domain.Flag    `json:"success"`
	OK      *domain.Flag    `json:"ok"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

func (e envelope) succeeded() bool {
	if e.errorText() != "" {
		return false
	}
	return (e.Success != nil && bool(*e.Success)) || (e.OK != nil && bool(*e.OK))
}

// errorText handles both "error":"text" and "error":{"message":"text"}.
func (e envelope) errorText() string {
	raw := bytes.TrimSpace(e.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// send performs the request and returns the raw body of a 2xx response.
func (c *Client) send(ctx context.Context, op string, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, &Error{Op: op, Message: msgNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: msgNetwork, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("Request failed (%d). Please try again.", resp.StatusCode)
		var env envelope
		if json.Unmarshal(body, &env) == nil {
			if t := env.errorText(); t != "" {
				msg = t
			} else if env.Message != "" {
				msg = env.Message
			}
		}
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: msg, Err: fmt.Errorf("http %s", resp.Status)}
	}
	return body, nil
}

func (c *Client) newJSONRequest(method, u string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, u, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// get fetches a read endpoint and decodes it into out. Reads carry no
// envelope on success, but a failure envelope is still honoured.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	req, err := c.newJSONRequest(http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return &Error{Op: op, Message: msgNetwork, Err: err}
	}
	body, err := c.send(ctx, op, req)
	if err != nil {
		return err
	}
	if err := failureIn(op, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Message: msgSync, Err: errors.Join(ErrSync, err)}
	}
	return nil
}

// mutate sends body and requires a success envelope. The raw body is
// returned for callers that need more than the flag.
func (c *Client) mutate(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, error) {
	req, err := c.newJSONRequest(method, c.endpoint(path, query), body)
	if err != nil {
		return nil, &Error{Op: op, Message: msgNetwork, Err: err}
	}
	return c.expectSuccess(ctx, op, req)
}

func (c *Client) expectSuccess(ctx context.Context, op string, req *http.Request) ([]byte, error) {
	raw, err := c.send(ctx, op, req)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &Error{Op: op, Message: msgSync, Err: errors.Join(ErrSync, err)}
	}
	if !env.succeeded() {
		msg := env.errorText()
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "The request could not be completed."
		}
		return nil, &Error{Op: op, Message: msg, Err: ErrRejected}
	}
	return raw, nil
}

// failureIn reports an explicit failure envelope inside a read response.
// Arrays and objects without a false success flag pass.
func failureIn(op string, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Error{Op: op, Message: msgSync, Err: ErrSync}
	}
	if trimmed[0] != '{' {
		return nil
	}
	var env envelope
	if json.Unmarshal(trimmed, &env) != nil {
		return nil
	}
	if t := env.errorText(); t != "" {
		return &Error{Op: op, Message: t, Err: ErrRejected}
	}
	if env.Success != nil && !bool(*env.Success) {
		msg := env.Message
		if msg == "" {
			msg = "The request could not be completed."
		}
		return &Error{Op: op, Message: msg, Err: ErrRejected}
	}
	return nil
}

// listOf decodes a list response that may be a bare array or an object
// wrapping it under one of keys.
func listOf[T any](op string, body []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	var out []T
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, &Error{Op: op, Message: msgSync, Err: errors.Join(ErrSync, err)}
		}
		return out, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, &Error{Op: op, Message: msgSync, Err: errors.Join(ErrSync, err)}
	}
	for _, k := range append(keys, "data") {
		raw, ok := obj[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, &Error{Op: op, Message: msgSync, Err: errors.Join(ErrSync, err)}
		}
		return out, nil
	}
	// An object with none of the keys is an empty list.
	return []T{}, nil
}

// getList is get for list endpoints.
func getList[T any](ctx context.Context, c *Client, op, path string, query url.Values, keys ...string) ([]T, error) {
	var raw json.RawMessage
	if err := c.get(ctx, op, path, query, &raw); err != nil {
		return nil, err
	}
	return listOf[T](op, raw, keys...)
}
