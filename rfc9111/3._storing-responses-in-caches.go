package rfc9111

import "net/http"

// § 3.  Storing Responses in Caches
// §
// §    A cache MUST NOT store a response to a request unless:
// §      *  the request method is understood by the cache;
// §      *  the response status code is final (see Section 15 of [HTTP]);
// §      *  the no-store cache directive is not present in the response (see
// §         Section 5.2.2.5);
// §
// §  In this context, a cache has "understood" a request method or a
// §  response status code if it recognizes it and implements all specified
// §  caching-related behavior.
//
// MethodIsUnderstood reports whether requests with the method take part in caching.
// Only GET is understood; every other method bypasses the cache for reads and writes.
func MethodIsUnderstood(method string) bool {
	return method == http.MethodGet
}

func responseStatusCodeIsFinal(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 599
}

// StatusCodeIsStorable reports whether a response with the status may be stored,
// given the additional successful statuses the cache accepts on top of 200.
// 206 and 304 are never stored as responses of their own.
func StatusCodeIsStorable(statusCode int, extra []int) bool {
	if !responseStatusCodeIsFinal(statusCode) {
		return false
	}
	switch statusCode {
	case http.StatusOK:
		return true
	case http.StatusPartialContent, http.StatusNotModified:
		return false
	}
	for _, code := range extra {
		if code == statusCode && code >= 200 && code <= 299 {
			return true
		}
	}
	return false
}

// §  Note that, in normal operation, some caches will not store a response
// §  that has neither a cache validator nor an explicit expiration time,
// §  as such responses are not usually useful to store.  However, caches
// §  are not prohibited from storing such responses.
