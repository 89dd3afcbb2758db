// Package gateway runs serverless HTTP-shaped events through an
// http.Handler, so a single invocation sees exactly the routes, middleware
// and error mapping of the long-running server.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// Event is an incoming function invocation. Only the fields the API reads
// are modelled.
type Event struct {
	HTTPMethod            string            `json:"httpMethod"`
	Headers               map[string]string `json:"headers"`
	PathParams            PathParams        `json:"pathParams"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	Body                  string            `json:"body"`
	IsBase64Encoded       bool              `json:"isBase64Encoded"`
}

// PathParams carries the route suffix after the function's base path,
// e.g. "expenses/42".
type PathParams struct {
	Proxy string `json:"proxy"`
}

type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// Request converts e into an *http.Request bound to ctx. A missing method
// means GET. Header names are canonicalised, so lookups are
// case-insensitive.
func (e Event) Request(ctx context.Context) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(e.HTTPMethod))
	if method == "" {
		method = http.MethodGet
	}

	body := []byte(e.Body)
	if e.IsBase64Encoded && e.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(e.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		body = decoded
	}

	target := &url.URL{Path: "/" + strings.TrimLeft(e.PathParams.Proxy, "/")}
	if len(e.QueryStringParameters) > 0 {
		query := url.Values{}
		for k, v := range e.QueryStringParameters {
			query.Set(k, v)
		}
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, v := range e.Headers {
		req.Header.Set(k, v)
	}
	if len(body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Invoke serves e with h and returns the recorded response. Only an
// undecodable event is an error; handler failures are regular responses.
func Invoke(ctx context.Context, h http.Handler, e Event) (Response, error) {
	req, err := e.Request(ctx)
	if err != nil {
		return Response{}, err
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	headers := make(map[string]string, len(rec.Header()))
	for k, v := range rec.Header() {
		headers[k] = strings.Join(v, ", ")
	}

	return Response{
		StatusCode: rec.Code,
		Headers:    headers,
		Body:       rec.Body.String(),
	}, nil
}
