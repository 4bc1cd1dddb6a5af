package arbor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
)

var emptyBodyType = reflect.TypeOf(Empty(nil))

// Client issues requests against a server built from the same declarations.
// The transport is an ordinary *http.Client; this layer only builds the
// path, query string, and body, and interprets the status code.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client targeting baseURL (scheme and host, no
// trailing path).
func NewClient(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, Separator)}
}

// WithHTTPClient sets the underlying HTTP client.
// If not set, http.DefaultClient is used.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithLogger sets a logger for request debug logging.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

func (c *Client) http() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// Call invokes a resolved endpoint. The outcome is three-way:
//
//   - a success status decodes the response body as Res;
//   - a status declared via Fails decodes that case's payload and returns
//     it inside a *FailureError (recover it with AsFailure);
//   - any other status returns *UnexpectedStatusError, never silently
//     coerced into a declared failure.
//
// Parameter encoding and path validation happen before any network I/O, so
// a malformed call never leaves the process.
func Call[Req, Res, P any](ctx context.Context, c *Client, re *ResolvedEndpoint[Req, Res, P], body Req, params P) (Res, error) {
	var zero Res
	ep := re.endpoint

	values, err := encodeParams(params)
	if err != nil {
		return zero, err
	}

	u := c.baseURL + re.path.String()
	if len(values) > 0 {
		u += "?" + values.Encode()
	}

	var reader io.Reader
	sendBody := ep.md.Request != emptyBodyType &&
		ep.method != http.MethodGet && ep.method != http.MethodHead
	if sendBody {
		data, err := json.Marshal(body)
		if err != nil {
			return zero, Errorf(CodeInvalidArgument, "failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, u, reader)
	if err != nil {
		return zero, err
	}
	if sendBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.log().Debug("calling endpoint",
		slog.String("method", ep.method),
		slog.String("url", u))

	resp, err := c.http().Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var res Res
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &res); err != nil {
				return zero, Errorf(CodeInternal, "failed to decode response body: %v", err)
			}
		}
		return res, nil
	}

	if fc, ok := ep.findFailure(resp.StatusCode); ok {
		payload, err := fc.decode(data)
		if err != nil {
			return zero, Errorf(CodeInternal, "failed to decode declared failure payload (status %d): %v", resp.StatusCode, err)
		}
		return zero, &FailureError{Status: resp.StatusCode, Payload: payload}
	}

	return zero, &UnexpectedStatusError{Status: resp.StatusCode, Body: data}
}
