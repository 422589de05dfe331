package client

import (
	"net/http"
	"sort"
	"strings"
)

// Static browser-identity values sent with every request. The vendor's
// session layer rejects requests that do not look like its own web app.
const (
	hostHeader    = "hcm.viventium.com"
	refererHeader = "https://hcm.viventium.com/apps/vm/"
	acceptHeader  = "application/json, text/plain, */*"
)

// Cookies is the session cookie set supplied by the caller. It is a sealed
// union: use CookieString for a pre-joined Cookie header value, or CookieMap
// for raw name/value pairs the client formats itself.
type Cookies interface {
	cookieHeader() string
}

// CookieString is a pre-formatted Cookie header value, passed through
// unchanged.
type CookieString string

func (c CookieString) cookieHeader() string { return string(c) }

// CookieMap holds raw cookie name/value pairs. Pairs are formatted as
// name=value and joined with "; ", keys in sorted order so the built header
// is deterministic.
type CookieMap map[string]string

func (c CookieMap) cookieHeader() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+c[k])
	}
	return strings.Join(pairs, "; ")
}

// authHeaders builds the fixed header set for one authenticated call: the
// XSRF token plus the browser-emulation headers the vendor expects.
func (c *Client) authHeaders(token string) http.Header {
	h := http.Header{}
	h.Set("Host", hostHeader)
	h.Set("User-Agent", c.userAgent)
	h.Set("Accept", acceptHeader)
	h.Set("Accept-Language", "en-GB,en;q=0.5")
	h.Set("X-XSRF-TOKEN", token)
	h.Set("Connection", "keep-alive")
	h.Set("Referer", refererHeader)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	return h
}
