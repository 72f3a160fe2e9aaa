package rfc9211

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// §  2.  The Cache-Status HTTP Response Header Field
// §
// §     The Cache-Status HTTP response header field indicates caches' handling
// §     of the request corresponding to the response it occurs within.
// §
// §     Its value is a List (Section 3.1 of [STRUCTURED-FIELDS]):
// §
// §     Cache-Status   = sf-list
// §
// §     Each member of the List represents a cache that has handled the
// §     request.  The first member of the List represents the cache closest
// §     to the origin server, and the last member of the List represents the
// §     cache closest to the user [...]
const HeaderName = "Cache-Status"

// FwdReason is the value of the fwd parameter.
type FwdReason string

// §  2.2.  The fwd Parameter
// §
// §     "fwd" indicates that the request went forward towards the origin and
// §     why.
const (
	// The cache was configured to not handle this request.
	FwdBypass FwdReason = "bypass"

	// The request method's semantics require the request to be
	// forwarded.
	FwdMethod FwdReason = "method"

	// The cache did not contain any responses that matched the
	// request URI.
	FwdUriMiss FwdReason = "uri-miss"

	// The cache did not contain any responses that could be used to
	// satisfy this request.
	FwdMiss FwdReason = "miss"

	// The cache was able to select a fresh response for the
	// request, but the request's semantics (e.g., Cache-Control request
	// directives) did not allow its use.
	FwdRequest FwdReason = "request"

	// The cache was able to select a response for the request, but
	// it was stale.
	FwdStale FwdReason = "stale"
)

// CacheStatus collects how a single request was handled by a cache
// and renders it as one member of the Cache-Status list.
type CacheStatus struct {
	name      string
	hit       bool
	fwdReason FwdReason
	fwdStatus int
	ttl       *time.Duration
	stored    bool
	detail    string
}

// New returns an empty status for the cache with the given name.
// Until Hit or Forward is called the status renders as a plain miss.
func New(name string) CacheStatus {
	return CacheStatus{name: name}
}

// §  2.1.  The hit Parameter
// §
// §     "hit", when true, indicates that the request was satisfied by the
// §     cache; that is, it was not forwarded, and the response was obtained
// §     from the cache.
func (cs *CacheStatus) Hit() {
	cs.hit = true
	cs.fwdReason = ""
}

func (cs *CacheStatus) Forward(reason FwdReason) {
	cs.hit = false
	cs.fwdReason = reason
}

// §  2.3.  The fwd-status Parameter
// §
// §     "fwd-status" indicates what status code the next hop server returned
// §     in response to the forwarded request.
func (cs *CacheStatus) ForwardStatus(statusCode int) {
	cs.fwdStatus = statusCode
}

// §  2.4.  The ttl Parameter
// §
// §     "ttl" indicates the response's remaining freshness lifetime as
// §     calculated by the cache, as an integer number of seconds [...]
// §     This parameter can be negative, in which case the response is stale.
func (cs *CacheStatus) TimeToLive(ttl time.Duration) {
	cs.ttl = &ttl
}

// §  2.5.  The stored Parameter
// §
// §     "stored" indicates whether the cache stored the response (Section 3
// §     of [HTTP-CACHING]); a true value indicates that it did.
func (cs *CacheStatus) Stored() {
	cs.stored = true
}

// §  2.8.  The detail Parameter
func (cs *CacheStatus) Detail(detail string) {
	cs.detail = detail
}

func (cs CacheStatus) IsHit() bool {
	return cs.hit
}

func (cs CacheStatus) Reason() FwdReason {
	return cs.fwdReason
}

// Label is a short single-word description, used e.g. as a metrics label.
func (cs CacheStatus) Label() string {
	if cs.hit {
		return "hit"
	}
	if cs.fwdReason == "" {
		return string(FwdMiss)
	}
	return string(cs.fwdReason)
}

func (cs CacheStatus) String() string {
	var b strings.Builder
	b.WriteString(serializeName(cs.name))
	switch {
	case cs.hit:
		b.WriteString("; hit")
	case cs.fwdReason != "":
		fmt.Fprintf(&b, "; fwd=%s", cs.fwdReason)
	default:
		fmt.Fprintf(&b, "; fwd=%s", FwdMiss)
	}
	if !cs.hit && cs.fwdStatus != 0 {
		fmt.Fprintf(&b, "; fwd-status=%d", cs.fwdStatus)
	}
	if cs.ttl != nil {
		fmt.Fprintf(&b, "; ttl=%d", int64(cs.ttl.Truncate(time.Second)/time.Second))
	}
	if cs.stored {
		b.WriteString("; stored")
	}
	if cs.detail != "" {
		b.WriteString("; detail=" + strconv.Quote(cs.detail))
	}
	return b.String()
}

// §     Each member of the list is a Token or String that identifies the
// §     cache [...]
func serializeName(name string) string {
	if isToken(name) {
		return name
	}
	return strconv.Quote(name)
}

// sf-token = ( ALPHA / "*" ) *( tchar / ":" / "/" )
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
		if i == 0 {
			if !alpha && r != '*' {
				return false
			}
			continue
		}
		switch {
		case alpha, r >= '0' && r <= '9':
		case strings.ContainsRune("!#$%&'*+-.^_`|~:/", r):
		default:
			return false
		}
	}
	return true
}
