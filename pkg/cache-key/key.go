package cachekey

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrInvalidURL = fmt.Errorf("Invalid URL")

const methodSeparator = ":"

// Keyer derives cache keys from the request method and absolute URL.
// Two requests with the same method and URL (including the query string) get the same key.
type Keyer struct{}

func NewKeyer() Keyer {
	return Keyer{}
}

// Key returns the cache key for the given method and URL, in the form `METHOD:URL`.
// The URL is normalized: scheme and host are lower-cased, default ports removed,
// an empty path becomes "/" and the fragment is dropped. The query is kept as is.
func (k Keyer) Key(method, rawURL string) (string, error) {
	u, err := normalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	return normalizeMethod(method) + methodSeparator + u, nil
}

// MethodPrefix gets the key prefix for all keys with the given method.
func (k Keyer) MethodPrefix(method string) string {
	return normalizeMethod(method) + methodSeparator
}

// RequestFromKey creates a request equal caching-wise to the one that resulted in the key.
func (k Keyer) RequestFromKey(key string) (*http.Request, error) {
	method, uri, found := strings.Cut(key, methodSeparator)
	if !found || method == "" {
		return nil, fmt.Errorf("Malformed key: %s", key)
	}
	return http.NewRequest(method, uri, nil)
}

func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}

func normalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Opaque != "" {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURL, rawURL)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if port := u.Port(); (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		host := u.Hostname()
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		u.Host = host
	}
	u.Host = strings.TrimSuffix(u.Host, ":")
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}
