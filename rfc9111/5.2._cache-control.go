package rfc9111

import (
	"net/http"
	"strings"
	"time"
)

// CacheControl implements parsing of the "Cache-Control" header (/field).
//
// §  5.2. Cache-Control
// §
// §  [...] Cache directives are identified by a token, to be compared
// §  case-insensitively, and have an optional argument that can use both
// §  token and quoted-string syntax.
// §
// §    Cache-Control   = #cache-directive
// §
// §    cache-directive = token [ "=" ( token / quoted-string ) ]
type CacheControl struct {
	directives map[string]string
}

// Get returns the value (/argument) of the specified directive,
// along with a boolean indicating whether this directive is present
func (c CacheControl) Get(directive string) (string, bool) {
	val, ok := c.directives[strings.ToLower(directive)]
	return val, ok
}

// HasDirective returns whether the specified directive is present
func (c CacheControl) HasDirective(directive string) bool {
	_, ok := c.Get(directive)
	return ok
}

// Len returns the number of distinct directives that were parsed.
func (c CacheControl) Len() int {
	return len(c.directives)
}

// ParseCacheControl takes Cache-Control headers as a slice of strings
// and returns an instance of `CacheControl`.
// Malformed directives are skipped.
func ParseCacheControl(headers []string) CacheControl {
	m := make(map[string]string)
	// process all headers
	// note setting map values like this means last defined directive wins
	for _, header := range headers {
		// process directives "#" means comma-separated list
		for _, directive := range strings.Split(header, ",") {
			name, arg, hasArg := strings.Cut(strings.TrimSpace(directive), "=")
			name = getCacheControlDirectiveName(name)
			if !isToken(name) {
				continue
			}
			if hasArg {
				arg = getCacheControlDirectiveArgument(arg)
			}
			m[name] = arg
		}
	}
	return CacheControl{m}
}

// ParseResponseCacheControl parses all Cache-Control fields of the given header.
func ParseResponseCacheControl(header http.Header) CacheControl {
	return ParseCacheControl(header.Values("Cache-Control"))
}

// getCacheControlDirectiveName returns a normalized name for the given directive.
func getCacheControlDirectiveName(token string) string {
	// §  [...] to be compared case-insensitively [...]
	return strings.ToLower(strings.TrimSpace(token))
}

// getCacheControlDirectiveArgument returns the directive argument in token form,
// i.e. it converts the argument from "quoted-string" to "token" form if needed.
func getCacheControlDirectiveArgument(arg string) string {
	// §  [...] argument that can use both token and quoted-string syntax. [...]
	return strings.Trim(strings.TrimSpace(arg), "\"")
}

// §     token          = 1*tchar
// §     tchar          = "!" / "#" / "$" / "%" / "&" / "'" / "*"
// §                    / "+" / "-" / "." / "^" / "_" / "`" / "|" / "~"
// §                    / DIGIT / ALPHA
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("!#$%&'*+-.^_`|~", r):
		default:
			return false
		}
	}
	return true
}

// §  5.2.1. Request Directives
// §
// §  5.2.1.4.  no-cache
// §
// §     The no-cache request directive indicates that the client prefers that
// §     a stored response not be used to satisfy the request without successful
// §     validation on the origin server.
//
// RequestForbidsReuse reports whether the request headers ask the cache
// to bypass its stored responses.
func RequestForbidsReuse(header http.Header) bool {
	return ParseCacheControl(header.Values("Cache-Control")).HasDirective("no-cache")
}

// §  5.2.2. Response Directives

// MaxAge returns "max-age" as a duration, along with a boolean indicating
// whether a valid "max-age" directive was present.
//
// §  5.2.2.1. max-age
// §
// §  The max-age response directive indicates that the response is to be considered
// §  stale after its age is greater than the specified number of seconds.
func (c CacheControl) MaxAge() (time.Duration, bool) {
	return c.getDeltaSeconds("max-age")
}

// NoCache reports whether the (qualified or unqualified) no-cache directive is present.
// The qualified form is treated like the unqualified one.
//
// §  5.2.2.4.  no-cache
// §
// §     The no-cache response directive, in its unqualified form (without an
// §     argument), indicates that the response MUST NOT be used to satisfy
// §     any other request without forwarding it for validation and receiving
// §     a successful response; see Section 4.3.
func (c CacheControl) NoCache() bool {
	return c.HasDirective("no-cache")
}

// NoStore reports whether the no-store directive is present.
//
// §  5.2.2.5.  no-store
// §
// §     The no-store response directive indicates that a cache MUST NOT store
// §     any part of either the immediate request or the response and MUST NOT
// §     use the response to satisfy any other request.
func (c CacheControl) NoStore() bool {
	return c.HasDirective("no-store")
}

// getDeltaSeconds returns the "delta-seconds" as `time.Duration`,
// as well as a boolean indicating whether the directive was set to a valid value.
//
// Examples:
// directive     -> 0,  false
// directive=0   -> 0,  true
// directive=60  -> 60, true
// directive=abc -> 0,  false
func (c CacheControl) getDeltaSeconds(directive string) (time.Duration, bool) {
	if secondsStr, ok := c.Get(directive); ok {
		return deltaSeconds(secondsStr)
	}
	return 0, false
}
