// Package lookupkey maps between metadata lookup keys such as "data/CH/AG"
// and the URLs that address them under a fixed prefix.
package lookupkey

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// DataKeyPrefix starts every address data key, e.g. "data/CH/AG".
const DataKeyPrefix = "data/"

// Util binds key/URL conversion to one URL prefix.
type Util struct {
	prefix string
}

// New returns a Util for prefix. Prefixes with an http or https scheme get
// their host lower-cased and converted to punycode so that
// "https://Example.COM/" and "https://example.com/" route the same way;
// other schemes (e.g. "test:///plain/") are used verbatim.
func New(prefix string) Util {
	return Util{prefix: canonicalPrefix(prefix)}
}

// Prefix returns the (canonicalised) prefix.
func (u Util) Prefix() string { return u.prefix }

// URLForKey returns the URL addressing key.
func (u Util) URLForKey(key string) string {
	return u.prefix + key
}

// KeyForURL strips the prefix from rawURL. ok is false when rawURL does not
// start with the prefix. The key may be empty. An http(s) rawURL is
// canonicalised like the prefix before matching.
func (u Util) KeyForURL(rawURL string) (key string, ok bool) {
	if u.prefix == "" {
		return "", false
	}
	if key, ok := strings.CutPrefix(canonicalPrefix(rawURL), u.prefix); ok {
		return key, true
	}
	return "", false
}

// IsDataURL reports whether rawURL starts with the prefix.
func (u Util) IsDataURL(rawURL string) bool {
	_, ok := u.KeyForURL(rawURL)
	return ok
}

// RegionKey returns the data key of a region, e.g. "CH" -> "data/CH".
func RegionKey(regionCode string) string {
	return DataKeyPrefix + regionCode
}

// RegionCode returns the region code of a data key, e.g. "data/CH/AG" -> "CH".
func RegionCode(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, DataKeyPrefix)
	if !ok || rest == "" {
		return "", false
	}
	code, _, _ := strings.Cut(rest, "/")
	if code == "" {
		return "", false
	}
	return code, true
}

// AggregateKey returns the region key a data key is aggregated under:
// "data/CH/AG" and "data/CH" both aggregate under "data/CH". Keys outside
// "data/" (e.g. "examples/...") and the bare "data" key are not aggregated.
func AggregateKey(key string) (string, bool) {
	code, ok := RegionCode(key)
	if !ok {
		return "", false
	}
	return RegionKey(code), true
}

// IsRegionKey reports whether key addresses a whole region ("data/XX").
func IsRegionKey(key string) bool {
	agg, ok := AggregateKey(key)
	return ok && agg == key
}

func canonicalPrefix(prefix string) string {
	u, err := url.Parse(prefix)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return prefix
	}
	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}
	if port := u.Port(); port != "" {
		host = host + ":" + port
	}
	// Rebuild by hand: url.URL.String would re-escape the path.
	_, rest, _ := strings.Cut(prefix, "://")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[i:]
	} else {
		rest = ""
	}
	return strings.ToLower(u.Scheme) + "://" + host + rest
}
