package rfc9111

import "net/http"

// §  3.2.  Updating Stored Header Fields
// §
// §     When doing so, the cache MUST add each header field in the provided
// §     response to the stored response, replacing field values that are
// §     already present, with the following exceptions:
// §
// §     *  Header fields excepted from storage in Section 3.1,
// §
// §     *  Header fields that the cache's stored response depends upon, as
// §        described below,
// §
// §     *  Header fields that are automatically processed and removed by the
// §        recipient, as described below, and
// §
// §     *  The Content-Length header field.
//
// UpdateStoredHeader returns a copy of the stored header with the fields of the
// received header added. Neither argument is modified.
func UpdateStoredHeader(stored, received http.Header) http.Header {
	updated := CanonicalHeader(stored)
	for field, values := range storableHeader(CanonicalHeader(received)) {
		switch field {
		case "Content-Length", "Content-Range":
			continue
		}
		updated[field] = append([]string(nil), values...)
	}
	return updated
}
