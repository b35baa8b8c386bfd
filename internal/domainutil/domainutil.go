package domainutil

import (
	"regexp"
	"strings"
)

// RFC 1123 host labels: letters, digits, hyphens, no leading/trailing hyphen,
// at least two labels total.
var domainRe = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// Normalize reduces user input like "HTTPS://WWW.Example.com/" to the bare
// FQDN "example.com". It is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimSuffix(d, ".")
	return d
}

// IsValid reports whether domain (already normalized) is a plausible FQDN.
func IsValid(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}
	return domainRe.MatchString(domain)
}

// IsSubdomain reports whether domain has more than two labels, e.g.
// "blog.example.com". Root domains like "example.com" return false.
// Multi-part public suffixes (co.uk) are not special-cased.
func IsSubdomain(domain string) bool {
	return strings.Count(domain, ".") > 1
}
