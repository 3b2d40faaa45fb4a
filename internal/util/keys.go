package util

import (
	"net/url"
	"strings"
)

// RequestKey returns the canonical identity of a request: "<METHOD> <url>".
// Two requests that differ only in fragment, host casing, or an explicit
// default port map to the same key. The query string is significant.
func RequestKey(method string, u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = canonicalHost(c.Scheme, c.Host)
	if c.Path == "" {
		c.Path = "/"
	}
	return method + " " + c.String()
}

func canonicalHost(scheme, host string) string {
	host = strings.ToLower(host)
	switch scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}
	return host
}

// EntryKey composes the storage key for a request entry inside a generation.
// Keys are compose-only; nothing parses them back apart.
func EntryKey(generation, requestKey string) string {
	return "entry:" + generation + ":" + requestKey
}
