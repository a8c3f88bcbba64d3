package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes one API call. It is never modified once handed to the
// client; retry state lives on the attempt wrapping it.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Get, Post, Put, Patch and Delete build the common requests
func Get(path string, query url.Values) Request {
	return Request{Method: http.MethodGet, Path: path, Query: query}
}

func Post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

func Put(path string, body any) Request {
	return Request{Method: http.MethodPut, Path: path, Body: body}
}

func Patch(path string, body any) Request {
	return Request{Method: http.MethodPatch, Path: path, Body: body}
}

func Delete(path string) Request {
	return Request{Method: http.MethodDelete, Path: path}
}

func (r Request) validate() error {
	if r.Method == "" {
		return fmt.Errorf("request method is required")
	}
	if r.Path == "" {
		return fmt.Errorf("request path is required")
	}
	return nil
}

func (r Request) encodeBody() ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	if raw, ok := r.Body.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return b, nil
}

// attempt is one logical request in flight. The retry of a request reuses
// its attempt, so requestID is shared and retried is set at most once.
type attempt struct {
	req       Request
	url       string
	requestID string
	retried   bool

	// unauthenticated attempts carry no bearer token and are never
	// intercepted (token refresh, health)
	unauthenticated bool
}

// Response is a successful (2xx/3xx) API response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// Decode unmarshals the JSON body into out. An empty body leaves out untouched.
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
