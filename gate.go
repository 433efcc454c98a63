package robinhood

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// do sends req through the Transport. Unless skipGate is set it first waits
// until the handshake has installed the token, and fails with ErrAuthRequired
// if authorization was never started. The response body and Transport errors
// are returned unchanged.
func (c *Client) do(ctx context.Context, req *Request, skipGate bool) (json.RawMessage, error) {
	var header http.Header
	if skipGate {
		header = c.headers
	} else {
		a := c.authorization()
		if a == nil {
			return nil, ErrAuthRequired
		}
		h, err := a.waitHeaders(ctx)
		if err != nil {
			return nil, err
		}
		header = h
	}

	req.Header = header.Clone()
	req.JSON = true
	req.Gzip = true

	c.logger.Debug().Str("method", req.Method).Str("url", req.URL).Msg("request")
	return c.transport.Do(ctx, req)
}

// call builds the request for e and sends it through the gate.
func (c *Client) call(ctx context.Context, e Endpoint, params map[string]string, query, form url.Values) (json.RawMessage, error) {
	method, u, err := c.url(e, params)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, &Request{Method: method, URL: u, Query: query, Form: form}, false)
}
