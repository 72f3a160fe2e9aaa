package clientcache

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/always-cache/clientcache/cache"
	cachekey "github.com/always-cache/clientcache/pkg/cache-key"
	responsetransformer "github.com/always-cache/clientcache/pkg/response-transformer"
	"github.com/always-cache/clientcache/rfc9111"
	"github.com/always-cache/clientcache/rfc9211"
)

const defaultName = "Client-Cache"

type Config struct {
	// Storage for cache entries.
	// A new in-memory store is created if nil.
	Cache cache.CacheProvider
	// Disable caching entirely: every lookup misses and nothing is stored.
	Disabled bool
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
	// Registerer for the cache metrics. Metrics are not exported if nil.
	Registerer prometheus.Registerer
	// Optional rules for adding or overriding Cache-Control of responses before storing.
	Rules responsetransformer.Rules
	// Successful status codes to store in addition to 200.
	CacheableStatusCodes []int
	// Clock used for freshness calculations. Defaults to time.Now.
	Now func() time.Time
	// Name of the cache in the Cache-Status header.
	Name string
}

// HttpCache decides for each outgoing request whether it can be answered from
// a stored response or needs to be sent, and for each response whether to store it.
// It is safe for concurrent use.
type HttpCache struct {
	cache                cache.CacheProvider
	keyer                cachekey.Keyer
	log                  zerolog.Logger
	disabled             bool
	rules                responsetransformer.Rules
	cacheableStatusCodes []int
	now                  func() time.Time
	name                 string
	metrics              *metrics
}

// Response is the response handed to the caller.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Stored is set if the response was stored or a stored response was updated.
	Stored bool
}

// Preparation is the outcome of PrepareRequest.
type Preparation struct {
	// Header to send with the request, including any precondition fields.
	Header http.Header
	// Cached is the stored response to use instead of sending the request, if any.
	Cached *Response
	// Status describes how the cache handled the request.
	Status rfc9211.CacheStatus
}

// New creates a cache with the given configuration.
func New(config Config) *HttpCache {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = log.Logger
	} else {
		logger = *config.Logger
	}
	name := config.Name
	if name == "" {
		name = defaultName
	}

	// create a child logger and add defaults
	logger = logger.With().
		Str("cache", name).
		Logger()

	store := config.Cache
	if store == nil {
		store = cache.NewMemCache()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &HttpCache{
		cache:                store,
		keyer:                cachekey.NewKeyer(),
		log:                  logger,
		disabled:             config.Disabled,
		rules:                config.Rules,
		cacheableStatusCodes: config.CacheableStatusCodes,
		now:                  now,
		name:                 name,
		metrics:              newMetrics(config.Registerer, name),
	}
}

// PrepareRequest is called before a request is sent.
// If the returned preparation has a cached response, the request must not be sent
// and the cached response is used instead. Otherwise the request is sent with the returned header.
// The given header is not modified.
func (h *HttpCache) PrepareRequest(method, url string, header http.Header) Preparation {
	p := Preparation{
		Header: rfc9111.CanonicalHeader(header),
		Status: rfc9211.New(h.name),
	}
	h.prepare(&p, method, url)
	h.metrics.lookup(p.Status.Label())
	h.log.Trace().
		Str("method", method).
		Str("url", url).
		Str("status", p.Status.String()).
		Msg("Prepared request")
	return p
}

func (h *HttpCache) prepare(p *Preparation, method, url string) {
	if h.disabled {
		p.Status.Forward(rfc9211.FwdBypass)
		return
	}
	if !isGet(method) {
		p.Status.Forward(rfc9211.FwdMethod)
		return
	}
	if rfc9111.RequestForbidsReuse(p.Header) {
		p.Status.Forward(rfc9211.FwdRequest)
		return
	}
	key, err := h.keyer.Key(method, url)
	if err != nil {
		h.log.Debug().Err(err).Str("url", url).Msg("Not caching request")
		p.Status.Forward(rfc9211.FwdBypass)
		return
	}
	entry, ok, err := h.cache.Get(key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Could not retrieve from cache")
		p.Status.Forward(rfc9211.FwdMiss)
		return
	}
	if !ok {
		p.Status.Forward(rfc9211.FwdUriMiss)
		return
	}

	now := h.now()
	if entry.IsFresh(now) {
		p.Status.Hit()
		p.Status.TimeToLive(entry.TimeToLive(now))
		p.Cached = &Response{
			StatusCode: entry.StatusCode,
			Header:     entry.Header,
			Body:       entry.Body,
		}
		return
	}
	h.log.Trace().Str("key", key).Str("policy", entry.Policy.String()).Msg("Stored response is stale")
	p.Status.Forward(rfc9211.FwdStale)
	rfc9111.AddConditionalHeaders(p.Header, entry.Validator)
}

// ProcessResponse is called with the response to a request that was sent.
// It returns the response to hand to the caller, which for a 304 to a
// revalidation is the stored response. The given header is not modified.
func (h *HttpCache) ProcessResponse(method, url string, statusCode int, header http.Header, body []byte) Response {
	res := Response{
		StatusCode: statusCode,
		Header:     rfc9111.CanonicalHeader(header),
		Body:       body,
	}
	if h.disabled || !isGet(method) {
		return res
	}
	key, err := h.keyer.Key(method, url)
	if err != nil {
		return res
	}
	now := h.now()

	if statusCode == http.StatusNotModified {
		return h.freshen(key, res, now)
	}
	if !rfc9111.StatusCodeIsStorable(statusCode, h.cacheableStatusCodes) {
		return res
	}

	h.rules.Apply(method, url, statusCode, res.Header)
	policy := rfc9111.DeriveFreshness(res.Header)
	if !policy.MayStore() {
		h.log.Trace().Str("key", key).Msg("Response must not be stored")
		h.metrics.store("no-store")
		return res
	}
	entry := cache.CacheEntry{
		Key:        key,
		StatusCode: statusCode,
		Header:     rfc9111.StorableHeader(res.Header),
		Body:       body,
		StoredAt:   now,
		Policy:     policy,
		Validator:  rfc9111.GetValidator(res.Header),
	}
	h.log.Trace().Str("key", key).Str("policy", policy.String()).Msg("Writing to cache")
	if err := h.cache.Put(entry); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Could not write to cache")
		h.metrics.store("error")
		return res
	}
	h.metrics.store("stored")
	res.Stored = true
	return res
}

// freshen handles a 304 response by updating and returning the stored response.
func (h *HttpCache) freshen(key string, notModified Response, now time.Time) Response {
	entry, ok, err := h.cache.Get(key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Could not retrieve from cache")
	}
	if !ok {
		// the origin validated a response that is not stored,
		// so there is nothing to return but the 304 metadata
		h.log.Warn().Str("key", key).Msg("Received 304 without stored response")
		h.metrics.revalidation("no-entry")
		return Response{
			StatusCode: http.StatusOK,
			Header:     notModified.Header,
			Body:       []byte{},
		}
	}

	header := rfc9111.UpdateStoredHeader(entry.Header, notModified.Header)
	if rfc9111.ParseResponseCacheControl(notModified.Header).NoStore() {
		h.log.Trace().Str("key", key).Msg("Not updating stored response")
		h.metrics.revalidation("no-store")
		return Response{
			StatusCode: entry.StatusCode,
			Header:     header,
			Body:       entry.Body,
		}
	}

	entry.Header = header
	entry.StoredAt = now
	entry.Policy = rfc9111.FreshenPolicy(entry.Policy, notModified.Header)
	entry.Validator = rfc9111.FreshenValidator(entry.Validator, notModified.Header)
	h.metrics.revalidation("not-modified")

	res := Response{
		StatusCode: entry.StatusCode,
		Header:     entry.Header.Clone(),
		Body:       entry.Body,
	}
	h.log.Trace().Str("key", key).Str("policy", entry.Policy.String()).Msg("Freshening stored response")
	if err := h.cache.Put(entry); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Could not write to cache")
		return res
	}
	res.Stored = true
	return res
}

func isGet(method string) bool {
	return rfc9111.MethodIsUnderstood(strings.ToUpper(method))
}
