package rules

import (
	"fmt"
	"strings"

	"github.com/AdguardTeam/urlclassifier/internal/ufnet"
)

// Request represents a URL classification request with all the options the
// caller knows about.  Options that were never set are unknown, and the rules
// that require them are not applied to the request.
//
// Requests must be created with [NewRequest] or [NewResourceRequest], and URL
// must not be changed afterwards.
type Request struct {
	// URL is the full request URL.
	URL string

	// urlLowerCase is URL folded for the shortcut lookups, see
	// [Request.URLLowerCase].
	urlLowerCase string

	// Domain is the domain of the page that made the request, see SetDomain.
	Domain string

	// domainVariants are the precomputed variants of Domain, see
	// DomainVariants.
	domainVariants []string

	// present is the set of options the request has values for.
	present Option

	// values contains the values of the options from present.
	values Option

	// hasDomain is true if Domain has been set.
	hasDomain bool
}

// NewRequest creates a new instance of *Request with no options set.
func NewRequest(url string) (r *Request) {
	return &Request{
		URL:          url,
		urlLowerCase: lowerURL(url),
	}
}

// lowerURL returns url in lower case with the long s replaced by "s".
func lowerURL(url string) (lower string) {
	lower = strings.ToLower(url)

	return strings.ReplaceAll(lower, "ſ", "s")
}

// URLLowerCase returns the URL in which the shortcuts are looked up.  It is
// the lower-cased URL, with the non-ASCII letters that case-insensitively
// match ASCII ones replaced by those.
func (r *Request) URLLowerCase() (url string) {
	return r.urlLowerCase
}

// NewResourceRequest creates a request for a resource loaded by a page of the
// firstPartyDomain.  isJS and isImage are derived from the resource content
// type.  If firstPartyDomain is not empty, the $domain and $third-party
// options are also set.
func NewResourceRequest(url, firstPartyDomain string, isJS, isImage bool) (r *Request) {
	r = NewRequest(url)
	r.Set(OptionScript, isJS)
	r.Set(OptionImage, isImage)

	if firstPartyDomain == "" {
		return r
	}

	r.SetDomain(firstPartyDomain)

	host := ufnet.NormalizeDomain(ufnet.ExtractHostname(url))
	if host != "" {
		thirdParty := ufnet.EffectiveTLDPlusOne(host) != ufnet.EffectiveTLDPlusOne(r.Domain)
		r.Set(OptionThirdParty, thirdParty)
	}

	return r
}

// Set sets the value of opt, which may also be a set of options.
func (r *Request) Set(opt Option, value bool) {
	r.present |= opt
	if value {
		r.values |= opt
	} else {
		r.values &^= opt
	}
}

// SetOption sets the value of the option with the given name.  It returns an
// error if the name is not a recognized binary option.
func (r *Request) SetOption(name string, value bool) (err error) {
	opt, ok := ParseOption(name)
	if !ok {
		return fmt.Errorf("setting %q: %w", name, ErrUnknownOption)
	}

	r.Set(opt, value)

	return nil
}

// SetDomain sets the domain of the page that made the request, without the
// scheme.  It is normalized to lower-case ASCII.
func (r *Request) SetDomain(domain string) {
	r.Domain = ufnet.NormalizeDomain(domain)
	r.domainVariants = DomainVariants(r.Domain)
	r.hasDomain = true
}

// Option returns the value of opt and true if it's been set.  opt must be a
// single option.
func (r *Request) Option(opt Option) (value, ok bool) {
	return r.values&opt != 0, r.present&opt != 0
}

// HasDomain returns true if the domain of the page has been set.
func (r *Request) HasDomain() (ok bool) {
	return r.hasDomain
}

// DomainVariants returns the variants of the request domain.
func (r *Request) DomainVariants() (variants []string) {
	return r.domainVariants
}

// DomainVariants returns domain and its parent domains, from the most specific
// one, down to the domain with two labels.  For example, for
// "foo.bar.example.com" it returns "foo.bar.example.com", "bar.example.com",
// and "example.com".
func DomainVariants(domain string) (variants []string) {
	for s := domain; strings.Contains(s, "."); s = s[strings.IndexByte(s, '.')+1:] {
		variants = append(variants, s)
	}

	return variants
}
