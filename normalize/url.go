package normalize

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// URL resolves a possibly relative URL against base. When either value
// cannot be parsed the input is returned unchanged.
func URL(v any, base string) string {
	raw, ok := v.(string)
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	b, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return b.ResolveReference(ref).String()
}

// ExternalWebsite is like URL but returns "" when the resolved host belongs
// to the source site: links back to the directory are not a profile's
// website.
func ExternalWebsite(v any, base, sourceDomain string) string {
	resolved := URL(v, base)
	if resolved == "" {
		return ""
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return resolved
	}
	if IsSourceHost(u.Hostname(), sourceDomain) {
		return ""
	}
	return resolved
}

// IsSourceHost reports whether host is the source domain or one of its
// subdomains. The source domain is reduced to its registrable domain, so
// "www.example.com" and "example.com" describe the same site. An empty
// source domain matches nothing.
func IsSourceHost(host, sourceDomain string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	domain := RegistrableDomain(sourceDomain)
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// RegistrableDomain returns the eTLD+1 of a host name, or the lowercased
// host itself when it has no public suffix (e.g. "localhost").
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// imageKeys are the object fields an image value may carry its URL in,
// highest priority first.
var imageKeys = []string{"url", "contentUrl", "@id", "thumbnailUrl"}

// Image resolves an image reference given as a string, a list (first
// element wins) or an ImageObject-like map.
func Image(v any, base string) string {
	switch x := v.(type) {
	case string:
		return URL(x, base)
	case []any:
		if len(x) == 0 {
			return ""
		}
		return Image(x[0], base)
	case []string:
		if len(x) == 0 {
			return ""
		}
		return URL(x[0], base)
	case map[string]any:
		vals := make([]any, len(imageKeys))
		for i, k := range imageKeys {
			vals[i] = x[k]
		}
		return URL(FirstDefined(vals...), base)
	}
	return ""
}
