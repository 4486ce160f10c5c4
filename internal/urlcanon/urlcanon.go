// Package urlcanon normalises URLs into a stable, deduplicatable canonical
// form and applies rel=canonical hints discovered on the fetched page.
package urlcanon

import (
	"net/url"
	"sort"
	"strings"

	"sportsfeed/internal/logger"
)

// trackingParams is the closed union of UTM, ad, and session parameters
// stripped during canonicalisation.
var trackingParams = map[string]bool{
	// UTM
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "utm_id": true,
	// common ad/tracking
	"gclid": true, "fbclid": true, "msclkid": true, "mc_cid": true,
	"mc_eid": true, "ref": true, "referrer": true, "icid": true,
	"spm": true, "igshid": true, "yclid": true,
	// session
	"sessionid": true, "session_id": true, "sid": true, "phpsessid": true,
	"jsessionid": true,
}

// Canonicalize normalises raw per spec §4.1. On malformed input it returns
// the original string unchanged and logs a warning.
func Canonicalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		logger.Warn("urlcanon: malformed url", "url", raw, "error", err.Error())
		return raw
	}
	if u.Scheme == "" || u.Host == "" {
		logger.Warn("urlcanon: missing scheme or host", "url", raw)
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Host = strings.TrimPrefix(u.Host, "www.")

	if u.Path == "" {
		u.Path = "/"
	} else if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	u.Fragment = ""
	u.RawQuery = canonicalizeQuery(u.Query())

	return u.String()
}

func canonicalizeQuery(values url.Values) string {
	kept := make(map[string]string, len(values))
	for k, v := range values {
		lk := strings.ToLower(k)
		if trackingParams[lk] {
			continue
		}
		if len(v) == 0 {
			continue
		}
		kept[k] = v[0]
	}
	if len(kept) == 0 {
		return ""
	}

	keys := make([]string, 0, len(kept))
	for k := range kept {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kept[k]))
	}
	return b.String()
}

// ResolveCanonicalHint resolves an href found in a page's
// <link rel="canonical"> element relative to the page's fetched URL, then
// canonicalises the result. The hint supersedes the fetched URL.
func ResolveCanonicalHint(fetchedURL, href string) string {
	base, err := url.Parse(fetchedURL)
	if err != nil {
		logger.Warn("urlcanon: malformed base url for canonical hint", "url", fetchedURL, "error", err.Error())
		return Canonicalize(fetchedURL)
	}
	ref, err := url.Parse(href)
	if err != nil {
		logger.Warn("urlcanon: malformed canonical hint", "href", href, "error", err.Error())
		return Canonicalize(fetchedURL)
	}
	resolved := base.ResolveReference(ref)
	return Canonicalize(resolved.String())
}
