package rfc9111

import (
	"net/http"
	"strings"
	"time"
)

// Validator holds the validator metadata of a stored response.
// Zero values mean the validator is absent.
type Validator struct {
	ETag         string
	LastModified time.Time
}

// GetValidator extracts the validators from response headers.
// An unparseable Last-Modified is treated as absent.
func GetValidator(header http.Header) Validator {
	v := Validator{
		ETag: strings.TrimSpace(header.Get("ETag")),
	}
	if lm, err := HttpDate(header.Get("Last-Modified")); err == nil {
		v.LastModified = lm
	}
	return v
}

// IsZero reports whether neither validator is present.
func (v Validator) IsZero() bool {
	return v.ETag == "" && v.LastModified.IsZero()
}

// §  4.3.1.  Sending a Validation Request
// §
// §     When generating a conditional request for validation, a cache:
// §
// §     *  MUST send the relevant entity tags (using If-Match, If-None-Match,
// §        or If-Range) if the entity tags were provided in the stored
// §        response(s) being validated.
// §
// §     *  SHOULD send the Last-Modified value (using If-Modified-Since) if
// §        the request is not for a subrange, a single stored response is
// §        being validated, and that response contains a Last-Modified value.
// §
// §     In most cases, both validators are generated in cache validation
// §     requests, even when entity tags are clearly superior, to allow old
// §     intermediaries that do not understand entity tag preconditions to
// §     respond appropriately.
//
// AddConditionalHeaders sets the precondition fields for the given validator
// on the request header, modifying it in place.
func AddConditionalHeaders(header http.Header, v Validator) {
	if v.ETag != "" {
		header.Set("If-None-Match", v.ETag)
	}
	if !v.LastModified.IsZero() {
		header.Set("If-Modified-Since", ToHttpDate(v.LastModified))
	}
}
