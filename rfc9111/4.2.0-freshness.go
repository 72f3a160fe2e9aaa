package rfc9111

import (
	"fmt"
	"time"
)

// §  4.2.  Freshness
// §
// §     A "fresh" response is one whose age has not yet exceeded its
// §     freshness lifetime.  Conversely, a "stale" response is one where it
// §     has.

// FreshnessKind enumerates the ways a stored response can become stale.
type FreshnessKind int

const (
	// NoStore responses are never stored.
	NoStore FreshnessKind = iota
	// AlwaysRevalidate responses are stored but must be validated before every reuse.
	AlwaysRevalidate
	// FreshFor responses are fresh for a duration counted from the time they were stored.
	FreshFor
	// FreshUntil responses are fresh until an absolute point in time.
	FreshUntil
)

func (k FreshnessKind) String() string {
	switch k {
	case NoStore:
		return "no-store"
	case AlwaysRevalidate:
		return "always-revalidate"
	case FreshFor:
		return "fresh-for"
	case FreshUntil:
		return "fresh-until"
	}
	return fmt.Sprintf("FreshnessKind(%d)", int(k))
}

// FreshnessPolicy is derived from the response headers at the time a response is stored.
type FreshnessPolicy struct {
	Kind FreshnessKind
	// Lifetime is used with FreshFor.
	Lifetime time.Duration
	// Until is used with FreshUntil.
	Until time.Time
}

func PolicyNoStore() FreshnessPolicy {
	return FreshnessPolicy{Kind: NoStore}
}

func PolicyAlwaysRevalidate() FreshnessPolicy {
	return FreshnessPolicy{Kind: AlwaysRevalidate}
}

func PolicyFreshFor(lifetime time.Duration) FreshnessPolicy {
	return FreshnessPolicy{Kind: FreshFor, Lifetime: lifetime}
}

func PolicyFreshUntil(until time.Time) FreshnessPolicy {
	return FreshnessPolicy{Kind: FreshUntil, Until: until}
}

// MayStore reports whether a response with this policy may be stored at all.
func (p FreshnessPolicy) MayStore() bool {
	return p.Kind != NoStore
}

// IsFresh reports whether a response stored at `storedAt` with this policy
// may be reused without validation at `now`.
func (p FreshnessPolicy) IsFresh(storedAt, now time.Time) bool {
	return p.TimeToLive(storedAt, now) > 0
}

// TimeToLive returns the remaining freshness of a stored response.
// Stale responses return zero or a negative duration.
func (p FreshnessPolicy) TimeToLive(storedAt, now time.Time) time.Duration {
	switch p.Kind {
	case FreshFor:
		return p.Lifetime - now.Sub(storedAt)
	case FreshUntil:
		return p.Until.Sub(now)
	}
	return 0
}

func (p FreshnessPolicy) String() string {
	switch p.Kind {
	case FreshFor:
		return fmt.Sprintf("%s=%s", p.Kind, p.Lifetime)
	case FreshUntil:
		return fmt.Sprintf("%s=%s", p.Kind, ToHttpDate(p.Until))
	}
	return p.Kind.String()
}
