package rfc9111

import "net/http"

// §  4.3.4.  Freshening Stored Responses upon Validation
// §
// §     When a cache receives a 304 (Not Modified) response, it needs to
// §     identify stored responses that are suitable for updating with the new
// §     information provided, and then do so.
// §
// §     For each stored response identified, the cache MUST update its header
// §     fields with the header fields provided in the 304 (Not Modified)
// §     response, as per Section 3.2.
//
// There is only ever one stored response per key, so it is always the one identified.

// FreshenPolicy returns the policy of a stored response after validation.
// The policy is derived anew when the 304 response carries freshness
// information, otherwise the stored policy is kept.
func FreshenPolicy(stored FreshnessPolicy, notModified http.Header) FreshnessPolicy {
	if CarriesFreshness(notModified) {
		return DeriveFreshness(notModified)
	}
	return stored
}

// FreshenValidator returns the validator of a stored response after validation.
// Each validator carried by the 304 response replaces the stored one.
func FreshenValidator(stored Validator, notModified http.Header) Validator {
	received := GetValidator(notModified)
	if received.ETag != "" {
		stored.ETag = received.ETag
	}
	if !received.LastModified.IsZero() {
		stored.LastModified = received.LastModified
	}
	return stored
}
