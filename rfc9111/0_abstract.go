// Package rfc9111 implements the parts of HTTP Caching (RFC 9111) used by a private client cache:
// directive parsing, freshness, validation and updating stored responses.
//
// Files are named after the sections they implement.
package rfc9111

// §  Abstract
// §
// §     The Hypertext Transfer Protocol (HTTP) is a stateless application-
// §     level protocol for distributed, collaborative, hypertext information
// §     systems.  This document defines HTTP caches and the associated header
// §     fields that control cache behavior or indicate cacheable response
// §     messages.
