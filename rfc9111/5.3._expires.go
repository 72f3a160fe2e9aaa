package rfc9111

import (
	"net/http"
	"time"
)

// §  5.3.  Expires
// §
// §     The "Expires" response header field gives the date/time after which
// §     the response is considered stale.
// §
// §       Expires = HTTP-date
// §
// §     A cache recipient MUST interpret invalid date formats, especially the
// §     value "0", as representing a time in the past (i.e., "already
// §     expired").
//
// Unparseable values are reported as absent here; the freshness rules then fall
// through to the default policy, which is also stale immediately.
func getExpires(header http.Header) (time.Time, bool) {
	if exp, err := HttpDate(header.Get("Expires")); err == nil {
		return exp, true
	}
	return time.Time{}, false
}
