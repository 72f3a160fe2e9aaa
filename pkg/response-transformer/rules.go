package responsetransformer

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Rules adjust the caching headers of responses before the cache decides whether to store them.
// The first matching rule is applied.
type Rules []Rule

type Rule struct {
	Prefix   string            `yaml:"prefix"`
	Path     string            `yaml:"path"`
	Method   string            `yaml:"method"`
	Default  string            `yaml:"default"`
	Override string            `yaml:"override"`
	Query    map[string]string `yaml:"query"`
	Headers  map[string]string `yaml:"headers"`
}

// Apply applies the first rule matching the request to the response header, modifying it in place.
// It reports whether a rule was applied.
func (r Rules) Apply(method, rawURL string, statusCode int, header http.Header) bool {
	// only apply rules for successes
	if statusCode < 200 || statusCode > 299 || len(r) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	// if rule found, apply to response
	if rule := r.find(method, u); rule != nil {
		applyRuleToHeader(*rule, header)
		return true
	}
	return false
}

func applyRuleToHeader(rule Rule, header http.Header) {
	if rule.Override != "" {
		log.Trace().Msg("Overriding Cache-Control header")
		header.Set("Cache-Control", rule.Override)
	} else if rule.Default != "" && header.Get("Cache-Control") == "" {
		log.Trace().Msg("Applying default Cache-Control header")
		header.Set("Cache-Control", rule.Default)
	}
	for name, value := range rule.Headers {
		log.Trace().Msgf("Setting header %s", name)
		header.Set(name, value)
	}
}

func (r Rules) find(method string, u *url.URL) *Rule {
	path := u.Path
	if path == "" {
		path = "/"
	}
	log.Trace().Msgf("Finding rule for request %s:%s", method, path)
rulesLoop:
	for _, rule := range r {
		ruleMethod := rule.Method
		if ruleMethod == "" {
			ruleMethod = http.MethodGet
		}
		if !strings.EqualFold(ruleMethod, method) {
			continue
		}
		if rule.Path != "" && rule.Path != path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(path, rule.Prefix) {
			continue
		}
		if len(rule.Query) > 0 {
			qry := u.Query()
			for name, value := range rule.Query {
				if value == "" && !qry.Has(name) {
					continue rulesLoop
				} else if value != "" && qry.Get(name) != value {
					continue rulesLoop
				}
			}
		}
		log.Trace().Msgf("Using rule %+v", rule)
		return &rule
	}
	return nil
}
