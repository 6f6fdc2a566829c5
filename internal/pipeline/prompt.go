package pipeline

import (
	"fmt"
	"strings"
)

// visibilityPrompt asks an engine to judge, per query, whether it would cite
// the domain. The reply contract is a bare JSON array, one object per query,
// in input order. The same prompt text goes to every engine in a batch so the
// cross-engine comparison sees identical stimulus.
const visibilityPrompt = `You are evaluating which websites an AI answer engine would cite.

Target website: %s (brand: %q)

For each numbered search query below, judge whether your answer to that query
would mention or cite %s (or the %q brand), at what rank among cited sources,
and with what sentiment.

Queries:
%s

Reply with ONLY a JSON array, one object per query, in the same order as the
queries above. Each object has exactly these fields:
  "mentioned": true or false
  "rank_position": integer 1-10 if mentioned, otherwise null
  "sentiment": number from -1.0 (negative) to 1.0 (positive), 0 if not mentioned

No prose, no markdown fencing, no trailing commentary.`

// BuildPrompt constructs the shared per-batch instruction for a set of
// queries against a target domain.
func BuildPrompt(queries []string, domain string) string {
	var b strings.Builder
	for i, q := range queries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	brand := BrandToken(domain)
	return fmt.Sprintf(visibilityPrompt, domain, brand, domain, brand, strings.TrimRight(b.String(), "\n"))
}

// BrandToken derives a brand name from a domain by stripping any scheme,
// "www." prefix, path, and the top-level suffix: "www.acme-tools.co.uk"
// becomes "acme-tools".
func BrandToken(domain string) string {
	host := strings.TrimSpace(strings.ToLower(domain))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "www.")
	if i := strings.Index(host, "."); i >= 0 {
		host = host[:i]
	}
	return host
}
