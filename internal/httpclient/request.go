package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request is a single fetch under construction. Setters chain; Get sends it.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(target any) Request
}

// Response pairs the raw http.Response with the read body and the decoded
// result, if decoding succeeded.
type Response struct {
	*http.Response
	body   []byte
	result any
}

// Body exposes the already-read response bytes.
func (r *Response) Body() []byte { return r.body }

// String renders the body for error messages.
func (r *Response) String() string { return string(r.body) }

// IsError reports an HTTP-level failure (status 400 and up).
func (r *Response) IsError() bool { return r.StatusCode >= http.StatusBadRequest }

// Result returns the value passed to SetResult when the body decoded into
// it, nil otherwise. Callers use nil to detect a malformed payload.
func (r *Response) Result() any { return r.result }

type fetchRequest struct {
	httpClient     *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	headers        map[string]string
	query          url.Values
	result         any
	errorHandler   ResponseErrorHandler
	labels         []*Label
}

func (f *fetchRequest) SetHeader(key, value string) Request {
	f.headers[key] = value
	return f
}

func (f *fetchRequest) SetQueryParam(key, value string) Request {
	if f.query == nil {
		f.query = url.Values{}
	}
	f.query.Set(key, value)
	return f
}

func (f *fetchRequest) SetResult(target any) Request {
	f.result = target
	return f
}

// Get sends the request and reads the whole body. An HTTP error status is
// not an error return by itself; the error handler, when set, gets the last
// word on 4xx and 5xx responses.
func (f *fetchRequest) Get(ctx context.Context, path string) (*Response, error) {
	ctx, span := f.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", path),
			attribute.String("provider", f.providerName),
		),
	)
	defer span.End()

	target, err := f.resolveURL(path)
	if err != nil {
		return nil, f.fail(ctx, span, "bad request url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, f.fail(ctx, span, "building request", err)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, f.fail(ctx, span, "request failed", err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, f.fail(ctx, span, "reading body", err)
	}

	response := &Response{Response: resp, body: body}

	if f.result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, f.result); err != nil {
			// Leave Result nil; the adapter maps that to its own error code.
			span.RecordError(err)
		} else {
			response.result = f.result
		}
	}

	if response.IsError() {
		span.SetAttributes(
			attribute.Int("http.status_code", resp.StatusCode),
			attribute.String("http.error.status", resp.Status),
		)
	}

	if f.errorHandler != nil {
		if handlerErr := f.errorHandler(resp.StatusCode, body); handlerErr != nil {
			span.RecordError(handlerErr)
			span.SetStatus(codes.Error, handlerErr.Error())
			f.count(ctx, false)
			return response, handlerErr
		}
	}

	f.count(ctx, !response.IsError())
	return response, nil
}

// resolveURL joins the client's base URL with path and appends query
// parameters. Absolute paths pass through untouched.
func (f *fetchRequest) resolveURL(path string) (string, error) {
	full := path
	if f.baseURL != "" && !strings.HasPrefix(path, "http") {
		full = strings.TrimSuffix(f.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	if len(f.query) == 0 {
		return full, nil
	}
	u, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", full, err)
	}
	q := u.Query()
	for key, values := range f.query {
		for _, v := range values {
			q.Set(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (f *fetchRequest) fail(ctx context.Context, span trace.Span, stage string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	f.count(ctx, false)
	return fmt.Errorf("%s: %w", stage, err)
}

func (f *fetchRequest) count(ctx context.Context, success bool) {
	attrs := make([]attribute.KeyValue, 0, len(f.labels)+2)
	attrs = append(attrs,
		attribute.String("provider", f.providerName),
		attribute.Bool("success", success),
	)
	for _, l := range f.labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	f.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
