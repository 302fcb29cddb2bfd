// Package ufnet contains utilities for URL and hostname parsing.
package ufnet

import (
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ExtractHostname quickly retrieves hostname from the given URL.
//
// NOTE: ExtractHostname is an optimized, best-effort function to retrieve a
// hostname from a URL-like string.  The result is not guaranteed to be correct
// for some edge cases, which include non-hierarchical URLs and IPv6 hostnames.
func ExtractHostname(url string) (hostname string) {
	firstIdx := strings.Index(url, "//")
	if firstIdx == -1 {
		// This is a non-hierarchical structured URL (e.g. stun: or turn:)
		// https://tools.ietf.org/html/rfc4395#section-2.2
		// https://datatracker.ietf.org/doc/html/rfc7064#appendix-B
		firstIdx = strings.Index(url, ":")
		if firstIdx == -1 {
			return ""
		}

		firstIdx = firstIdx + 1
	} else {
		firstIdx = firstIdx + 2
	}

	// Strip the userinfo part, if any.
	end := strings.IndexAny(url[firstIdx:], "/?#")
	if end == -1 {
		end = len(url)
	} else {
		end += firstIdx
	}

	if at := strings.LastIndexByte(url[firstIdx:end], '@'); at != -1 {
		firstIdx += at + 1
	}

	nextIdx := strings.IndexAny(url[firstIdx:], "/:?#")
	if nextIdx == -1 {
		nextIdx = len(url)
	} else {
		nextIdx += firstIdx
	}

	if nextIdx <= firstIdx {
		return ""
	}

	return url[firstIdx:nextIdx]
}

// NormalizeDomain returns the lower-case ASCII form of domain without the
// trailing dot.  Internationalized names are converted to punycode; if that
// fails, the lower-cased input is returned.
func NormalizeDomain(domain string) (norm string) {
	norm = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
	if norm == "" {
		return ""
	}

	ascii, err := idna.Lookup.ToASCII(norm)
	if err != nil {
		// Not a valid IDN, keep the lower-cased version.
		return norm
	}

	return ascii
}

// EffectiveTLDPlusOne returns the registrable domain of hostname, that is the
// effective top-level domain with one more label.  If hostname is a public
// suffix itself or an invalid name, hostname is returned unchanged.
func EffectiveTLDPlusOne(hostname string) (domain string) {
	hostnameLen := len(hostname)
	if hostnameLen < 1 || hostname[0] == '.' || hostname[hostnameLen-1] == '.' {
		return hostname
	}

	suffix, _ := publicsuffix.PublicSuffix(hostname)

	i := hostnameLen - len(suffix) - 1
	if i < 0 || hostname[i] != '.' {
		return hostname
	}

	return hostname[1+strings.LastIndex(hostname[:i], "."):]
}
