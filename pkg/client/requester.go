package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ResponseHandler classifies a raw HTTP response into a parsed JSON body or
// a typed error. The client hands its own normalizer to injected requesters
// so success and error semantics stay identical across transports.
type ResponseHandler func(*http.Response) (json.RawMessage, error)

// RequestOptions carries the per-request header set and query parameters.
type RequestOptions struct {
	Headers http.Header
	Query   url.Values
}

// Requester is the transport seam. Implementations own connection handling
// (pooling, timeouts, proxying) and must invoke process exactly once on the
// raw response, returning its result.
type Requester interface {
	Request(ctx context.Context, method, url string, process ResponseHandler, opts RequestOptions) (json.RawMessage, error)
}
