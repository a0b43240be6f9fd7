package magicurl

import (
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/idna"
)

// Normalizer canonicalizes link targets before they are stored.
// It only touches input accepted by the eligibility pattern and never fails:
// anything it cannot canonicalize comes back unchanged.
type Normalizer struct {
	eligible *Pattern
	opts     NormalizeOptions
}

// NewNormalizer builds a Normalizer from the Normalize pattern and
// NormalizeURL options of cfg.
func NewNormalizer(cfg Config) *Normalizer {
	cfg = cfg.withDefaults()
	return &Normalizer{eligible: cfg.Normalize, opts: cfg.NormalizeURL}
}

// Normalize returns the canonical form of raw, or raw itself when raw is not
// an eligible URL.
func (n *Normalizer) Normalize(raw string) string {
	ok, err := n.eligible.MatchString(raw)
	if err != nil || !ok {
		return raw
	}
	if out, ok := canonicalize(raw, n.opts); ok {
		return out
	}
	return raw
}

// baseFlags are applied to every eligible URL.
const baseFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes

func purellFlags(opts NormalizeOptions, host string) purell.NormalizationFlags {
	f := baseFlags
	if opts.RemoveTrailingSlash {
		f |= purell.FlagRemoveTrailingSlash
	}
	if opts.SortQueryParameters {
		f |= purell.FlagSortQuery
	}
	if opts.StripFragment {
		f |= purell.FlagRemoveFragment
	}
	if opts.StripWWW && strippableWWW(host) {
		f |= purell.FlagRemoveWWW
	}
	return f
}

func canonicalize(raw string, opts NormalizeOptions) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// Scheme-less input is parsed as http and keeps no scheme on the way out.
	prefix := ""
	hasScheme := hasSchemePrefix(s)
	switch {
	case hasScheme:
	case strings.HasPrefix(s, "//"):
		prefix = "http:"
	default:
		prefix = "http://"
	}

	u, err := url.Parse(prefix + s)
	if err != nil || u.Opaque != "" || u.Host == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	// "mailto:x@www.host" and friends are not scheme-less URLs.
	if !hasScheme && u.User != nil {
		return "", false
	}

	if hasScheme && opts.ForceHTTPS {
		u.Scheme = "https"
	}
	if opts.StripAuthentication {
		u.User = nil
	}

	host := canonicalHost(u.Hostname())
	if host == "" {
		return "", false
	}
	switch port := u.Port(); {
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}

	if opts.RemoveTrackingParameters {
		u.RawQuery = removeTrackingParameters(u.RawQuery)
	}
	u.ForceQuery = false
	if opts.StripTextFragment && !opts.StripFragment {
		if i := strings.Index(u.Fragment, ":~:text"); i >= 0 {
			u.Fragment, u.RawFragment = u.Fragment[:i], ""
		}
	}

	out := purell.NormalizeURL(u, purellFlags(opts, host))
	out = strings.TrimSuffix(out, "#")
	if !hasScheme {
		return strings.TrimPrefix(out, prefix), true
	}
	if opts.StripProtocol {
		out = strings.TrimPrefix(out, u.Scheme+"://")
	}
	return out, true
}

// hasSchemePrefix reports whether s starts with "scheme://".
func hasSchemePrefix(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// canonicalHost lowercases host, drops a trailing dot and converts
// internationalized names to their ASCII form.
func canonicalHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if !strings.Contains(host, ":") {
		if ascii, err := idna.Lookup.ToASCII(host); err == nil {
			host = ascii
		}
	}
	return host
}

// strippableWWW reports whether host is "www." followed by a label and a
// suffix, so that dropping "www." still leaves a registrable name.
func strippableWWW(host string) bool {
	rest, ok := strings.CutPrefix(host, "www.")
	if !ok || strings.HasPrefix(rest, "www.") {
		return false
	}
	label, suffix, ok := strings.Cut(rest, ".")
	if !ok || len(label) < 1 || len(label) > 63 || len(suffix) < 2 || len(suffix) > 63 {
		return false
	}
	return hostChars(label, false) && hostChars(suffix, true)
}

func hostChars(s string, allowDot bool) bool {
	for _, c := range s {
		switch {
		case 'a' <= c && c <= 'z', '0' <= c && c <= '9', c == '-':
		case allowDot && c == '.':
		default:
			return false
		}
	}
	return true
}

// removeTrackingParameters drops utm_* keys and keeps every other pair verbatim.
func removeTrackingParameters(raw string) string {
	if raw == "" {
		return ""
	}
	pairs := strings.Split(raw, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil && isTrackingKey(k) {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

func isTrackingKey(key string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(key), "utm_")
	if !ok || rest == "" {
		return false
	}
	for _, c := range rest {
		if !('a' <= c && c <= 'z' || '0' <= c && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}
