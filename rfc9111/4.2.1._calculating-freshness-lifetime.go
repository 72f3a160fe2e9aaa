package rfc9111

import (
	"net/http"
)

// freshnessRule derives a policy from the response directives.
// The boolean is false if the rule does not apply, in which case the next rule is tried.
type freshnessRule func(cc CacheControl, header http.Header) (FreshnessPolicy, bool)

// freshnessRules are evaluated in order, the first applicable rule wins.
//
// §     A cache can calculate the freshness lifetime (denoted as
// §     freshness_lifetime) of a response by evaluating the following rules
// §     and using the first match:
//
// The storage-related directives are evaluated first, since a response that
// must not be stored or must always be validated has no use for a lifetime.
var freshnessRules = []freshnessRule{
	noStoreRule,
	noCacheRule,
	maxAgeRule,
	expiresRule,
}

// DeriveFreshness returns the freshness policy for a response with the given headers.
// Responses without any freshness information get a zero lifetime, i.e. they are
// stored for the sake of their validators but are stale immediately.
func DeriveFreshness(header http.Header) FreshnessPolicy {
	cc := ParseResponseCacheControl(header)
	for _, rule := range freshnessRules {
		if policy, ok := rule(cc, header); ok {
			return policy
		}
	}
	// §     *  Otherwise, no explicit expiration time is present in the response.
	// §        A heuristic freshness lifetime might be applicable; see
	// §        Section 4.2.2.
	//
	// heuristic freshness is not used
	return PolicyFreshFor(0)
}

// CarriesFreshness reports whether the headers contain any information that
// DeriveFreshness would use instead of falling back to the default policy.
func CarriesFreshness(header http.Header) bool {
	if len(header.Values("Cache-Control")) > 0 {
		return true
	}
	_, ok := getExpires(header)
	return ok
}

func noStoreRule(cc CacheControl, _ http.Header) (FreshnessPolicy, bool) {
	if cc.NoStore() {
		return PolicyNoStore(), true
	}
	return FreshnessPolicy{}, false
}

func noCacheRule(cc CacheControl, _ http.Header) (FreshnessPolicy, bool) {
	if cc.NoCache() {
		return PolicyAlwaysRevalidate(), true
	}
	return FreshnessPolicy{}, false
}

// §     *  If the max-age response directive (Section 5.2.2.1) is present,
// §        use its value, or
func maxAgeRule(cc CacheControl, _ http.Header) (FreshnessPolicy, bool) {
	if val, ok := cc.MaxAge(); ok {
		return PolicyFreshFor(val), true
	}
	return FreshnessPolicy{}, false
}

// §     *  If the Expires response header field (Section 5.3) is present, use
// §        its value minus the value of the Date response header field [...]
//
// Expires is kept as an absolute time, the local clock is trusted over Date.
func expiresRule(_ CacheControl, header http.Header) (FreshnessPolicy, bool) {
	if expires, ok := getExpires(header); ok {
		return PolicyFreshUntil(expires), true
	}
	return FreshnessPolicy{}, false
}
