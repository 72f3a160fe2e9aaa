// Package rfc9211 renders the Cache-Status HTTP response header field (RFC 9211).
package rfc9211

// §  1.  Introduction
// §
// §     To aid debugging (both by humans and automated tools), HTTP caches
// §     often append header fields to a response explaining how they handled
// §     the request.
