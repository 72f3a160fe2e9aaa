package clientcache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/always-cache/clientcache/rfc9111"
	"github.com/always-cache/clientcache/rfc9211"
)

// Transport is an http.RoundTripper that answers requests from the cache where possible,
// revalidates stale responses and stores the responses it receives.
// Every response gets a Cache-Status header.
type Transport struct {
	Cache *HttpCache
	// The RoundTripper used to send requests.
	// If nil, http.DefaultTransport is used.
	Next http.RoundTripper
}

// NewClient returns a client with its own cache created from the config.
func NewClient(config Config) *http.Client {
	return (&Transport{Cache: New(config)}).Client()
}

// Client returns an *http.Client that uses the transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements the http.RoundTripper interface.
// Errors from the underlying transport are returned as is and nothing is stored.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	rawURL := req.URL.String()
	prep := t.Cache.PrepareRequest(method, rawURL, req.Header)

	if prep.Cached != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		t.Cache.logRequest(method, rawURL, prep.Status)
		return newResponse(req, *prep.Cached, prep.Status), nil
	}

	outReq := req.Clone(req.Context())
	outReq.Header = prep.Header
	res, err := t.next().RoundTrip(outReq)
	if err != nil {
		return nil, err
	}
	prep.Status.ForwardStatus(res.StatusCode)

	if !t.Cache.participates(method, res.StatusCode) {
		res.Header.Add(rfc9211.HeaderName, prep.Status.String())
		t.Cache.logRequest(method, rawURL, prep.Status)
		return res, nil
	}

	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	processed := t.Cache.ProcessResponse(method, rawURL, res.StatusCode, res.Header, body)
	if processed.Stored {
		prep.Status.Stored()
	}
	t.Cache.logRequest(method, rawURL, prep.Status)
	return newResponse(req, processed, prep.Status), nil
}

func (t *Transport) next() http.RoundTripper {
	if t.Next == nil {
		return http.DefaultTransport
	}
	return t.Next
}

// participates reports whether the response needs to go through ProcessResponse.
// Other responses are streamed to the caller untouched.
func (h *HttpCache) participates(method string, statusCode int) bool {
	if h.disabled || !isGet(method) {
		return false
	}
	return statusCode == http.StatusNotModified ||
		rfc9111.StatusCodeIsStorable(statusCode, h.cacheableStatusCodes)
}

func (h *HttpCache) logRequest(method, url string, cs rfc9211.CacheStatus) {
	isHit := 0
	if cs.IsHit() {
		isHit = 1
	}
	h.log.Debug().
		Str("method", method).
		Str("url", url).
		Str("status", cs.Label()).
		Str("cacheStatus", cs.String()).
		Int("hit", isHit).
		Msg("Sending response to client")
}

func newResponse(req *http.Request, r Response, cs rfc9211.CacheStatus) *http.Response {
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Add(rfc9211.HeaderName, cs.String())
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode)),
		StatusCode:    r.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}
