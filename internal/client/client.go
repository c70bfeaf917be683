// Package client implements HTTP clients for the external product and
// payment services. Every call runs under a bounded timeout; a timeout is
// treated as a plain call failure and classified by the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// defaultTimeout bounds a single external call when the config leaves the
// timeout unset.
const defaultTimeout = 5 * time.Second

// statusError reports a non-2xx response from a collaborator.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return "unexpected status " + http.StatusText(e.Status)
	}
	return "unexpected status " + http.StatusText(e.Status) + ": " + e.Body
}

type httpClient struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

func newHTTPClient(baseURL string, timeout time.Duration) httpClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return httpClient{
		base:    baseURL,
		http:    &http.Client{},
		timeout: timeout,
	}
}

// do issues a request and decodes a JSON response into out (when non-nil).
// Non-2xx responses become a *statusError carrying a truncated body.
func (c httpClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(err, "decode %s %s response", method, path)
		}
	}
	return nil
}

func isStatus(err error, code int) bool {
	var se *statusError
	return errors.As(err, &se) && se.Status == code
}
