package robinhood

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Request is a fully formed call against the API. Header is filled in by the
// client right before the request is handed to the Transport.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Query  url.Values
	Form   url.Values

	// JSON asks the Transport to decode the body as JSON.
	JSON bool

	// Gzip asks for compressed transfer.
	Gzip bool
}

// Transport performs a Request and returns the decoded response body.
type Transport interface {
	Do(ctx context.Context, req *Request) (json.RawMessage, error)
}

// HTTPTransport is the default Transport, built on net/http.
type HTTPTransport struct {
	HTTPClient *http.Client
}

// NewHTTPTransport returns a transport using client, or a client with a 30s
// timeout when client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{HTTPClient: client}
}

func (t *HTTPTransport) Do(ctx context.Context, r *Request) (json.RawMessage, error) {
	target, err := url.Parse(r.URL)
	if err != nil {
		return nil, ErrTransport.WithMessage("invalid url " + r.URL).WithError(err)
	}
	if len(r.Query) > 0 {
		q := target.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), body)
	if err != nil {
		return nil, ErrTransport.WithMessage("failed to create request").WithError(err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.Form != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	}
	if r.Gzip && req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip, deflate")
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, ErrTransport.WithError(err)
	}
	defer resp.Body.Close()

	reader, err := decompress(resp)
	if err != nil {
		return nil, ErrTransport.WithMessage("failed to decompress response").WithError(err).withResponse(resp.StatusCode, "")
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, ErrTransport.WithMessage("failed to read response").WithError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrTransport.withResponse(resp.StatusCode, string(data))
	}

	if !r.JSON {
		raw, err := json.Marshal(string(data))
		if err != nil {
			return nil, ErrTransport.WithError(err)
		}
		return raw, nil
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, ErrTransport.WithMessage("failed to decode response").withResponse(resp.StatusCode, string(data))
	}
	return json.RawMessage(data), nil
}

// decompress wraps the body according to Content-Encoding. net/http only
// decodes gzip itself when it set Accept-Encoding, which the client never
// leaves to it.
func decompress(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "deflate":
		return zlib.NewReader(resp.Body)
	default:
		return io.NopCloser(resp.Body), nil
	}
}
