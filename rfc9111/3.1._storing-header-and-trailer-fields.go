package rfc9111

import (
	"net/http"
	"net/textproto"
	"strings"
)

// CanonicalHeader returns a copy of the header with every field name in canonical form,
// so that lookups work regardless of how the keys were written into the map.
// Values of fields whose names differ only in case are combined.
func CanonicalHeader(header http.Header) http.Header {
	h := make(http.Header, len(header))
	for field, values := range header {
		key := textproto.CanonicalMIMEHeaderKey(field)
		h[key] = append(h[key], values...)
	}
	return h
}

// StorableHeader returns the header fields of a response that are kept in the store.
//
// §  3.1.  Storing Header and Trailer Fields
func StorableHeader(header http.Header) http.Header {
	return storableHeader(CanonicalHeader(header))
}

func storableHeader(header http.Header) http.Header {
	if header == nil {
		return nil
	}
	// §     Caches MUST include all received response header fields -- including
	// §     unrecognized ones -- when storing a response; this assures that new
	// §     HTTP header fields can be successfully deployed.  However, the
	// §     following exceptions are made:
	h := header.Clone()
	// §
	// §     *  The Connection header field and fields whose names are listed in
	// §        it are required by Section 7.6.1 of [HTTP] to be removed before
	// §        forwarding the message.  This MAY be implemented by doing so
	// §        before storage.
	for _, field := range GetListHeader(header, "Connection") {
		h.Del(field)
	}
	h.Del("Connection")
	// §
	// §     *  Likewise, some fields' semantics require them to be removed before
	// §        forwarding the message, and this MAY be implemented by doing so
	// §        before storage; see Section 7.6.1 of [HTTP] for some examples.
	h.Del("Proxy-Connection")
	h.Del("Keep-Alive")
	h.Del("TE")
	h.Del("Transfer-Encoding")
	h.Del("Upgrade")
	// §
	// §     *  Header fields that are specific to the proxy that a cache uses
	// §        when forwarding a request MUST NOT be stored [...]
	h.Del("Proxy-Authenticate")
	h.Del("Proxy-Authentication-Info")
	h.Del("Proxy-Authorization")
	return h
}

// GetListHeader returns the trimmed, non-empty members of a comma-separated list field.
func GetListHeader(header http.Header, field string) []string {
	list := make([]string, 0)
	for _, hdr := range header.Values(field) {
		for _, item := range strings.Split(hdr, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}
	return list
}
