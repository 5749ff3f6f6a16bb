package proxy

import (
	"fmt"
	"net/url"
	"strings"
)

// RewriteTable is a declarative source-host to destination-host mapping
// applied to upstream URLs. Substitution is exact on the host, never
// order-dependent string replacement.
type RewriteTable struct {
	rules map[string]string
}

func NewRewriteTable(rules map[string]string) RewriteTable {
	normalized := make(map[string]string, len(rules))
	for src, dst := range rules {
		normalized[strings.ToLower(src)] = strings.ToLower(dst)
	}
	return RewriteTable{rules: normalized}
}

// ParseRules parses a comma-separated "src=dst" rule list, as supplied via
// the HOST_REWRITES environment variable.
func ParseRules(raw string) (map[string]string, error) {
	rules := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return rules, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		src, dst, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || src == "" || dst == "" {
			return nil, fmt.Errorf("invalid host rewrite rule %q", pair)
		}
		rules[src] = dst
	}
	return rules, nil
}

// Rewrite maps the URL's host through the table, leaving unknown hosts
// untouched. The input is never mutated.
func (t RewriteTable) Rewrite(u *url.URL) *url.URL {
	out := *u
	if dst, ok := t.rules[strings.ToLower(u.Hostname())]; ok {
		out.Host = dst
	}
	return &out
}

// RewriteString is a convenience wrapper over Rewrite for raw URLs.
func (t RewriteTable) RewriteString(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return t.Rewrite(u).String(), nil
}
