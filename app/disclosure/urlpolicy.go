package disclosure

import (
	"net/url"
	"strings"
)

// Hosts permitted for automated document fetch. The allowlist exists because
// fetch-and-submit-to-a-third-party-AI must not be triggerable against
// arbitrary hosts: the dashboard exposes a paste-a-URL field.
const (
	registryHost   = "release.tdnet.info"
	redirectorHost = "webapi.yanoshin.jp"
	redirectorPath = "/rd.php"
)

// Query parameter names the redirector has been observed to carry the target
// URL under.
var redirectorTargetParams = []string{"url", "u", "target"}

// CanonicalIdentity derives the cache key for a document URL: the URL as
// given, whitespace-trimmed. Wrapper and direct URLs for the same document
// stay distinct identities; content-addressed dedup is a deliberate
// non-feature (duplicate analyses beat false sharing).
func CanonicalIdentity(rawURL string) string {
	return strings.TrimSpace(rawURL)
}

// IsEligibleForFetch reports whether a URL may be downloaded and submitted
// for analysis. True only for a PDF on the disclosure registry host (or a
// subdomain of it), or for the known redirector when its query embeds such a
// URL. Pure and synchronous; no network.
func IsEligibleForFetch(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	if hostMatches(host, registryHost) {
		return isPDFPath(u.Path)
	}

	if hostMatches(host, redirectorHost) && strings.HasSuffix(u.Path, redirectorPath) {
		return redirectorTargetEligible(u)
	}

	return false
}

func redirectorTargetEligible(u *url.URL) bool {
	qs := u.Query()
	for _, key := range redirectorTargetParams {
		if target := qs.Get(key); target != "" {
			return isRegistryPDF(target)
		}
	}

	// The redirector is also used with the bare target as the whole query
	// string: rd.php?https://release.tdnet.info/...pdf
	if q := u.RawQuery; strings.HasPrefix(q, "http") {
		if decoded, err := url.QueryUnescape(q); err == nil {
			return isRegistryPDF(decoded)
		}
	}

	return false
}

func isRegistryPDF(rawURL string) bool {
	t, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return hostMatches(strings.ToLower(t.Hostname()), registryHost) && isPDFPath(t.Path)
}

func hostMatches(host, allowed string) bool {
	return host == allowed || strings.HasSuffix(host, "."+allowed)
}

func isPDFPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}
