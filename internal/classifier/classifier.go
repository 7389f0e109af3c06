// Package classifier derives the client address and request heuristics
// (connection type, mobile, Tor, VPN) from HTTP request headers.
//
// Everything here is a pure function of the headers and the peer address.
// Header values are trusted as received: this service expects to run behind
// a proxy the operator controls.
package classifier

import (
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/evyataryagoni/ipcheck/internal/models"
)

// Recognized request headers
const (
	HeaderCFConnectingIP = "CF-Connecting-IP"
	HeaderRealIP         = "X-Real-IP"
	HeaderForwardedFor   = "X-Forwarded-For"
	HeaderUserAgent      = "User-Agent"
	HeaderTorExitNode    = "X-Tor-Exit-Node"
	HeaderTor            = "X-Tor"
	HeaderVPN            = "X-VPN"
	HeaderHost           = "Host"
)

// Connection type labels
const (
	ConnectionCloudflare = "Cloudflare"
	ConnectionProxy      = "Proxy/Load Balancer"
	ConnectionForwarded  = "Forwarded"
	ConnectionDirect     = "Direct"
)

// UnknownUserAgent is reported when the request carries no usable User-Agent
const UnknownUserAgent = "Unknown"

var mobilePatterns = []string{
	"Mobile",
	"Android",
	"iPhone",
	"iPad",
	"iPod",
	"BlackBerry",
	"Opera Mini",
}

// vpnPrefixes is a prefix check, not a CIDR match: "172." covers far more
// than 172.16.0.0/12.
var vpnPrefixes = []string{"10.", "192.168.", "172."}

// ClientIP resolves the address attributed to the original requester.
//
// Precedence (first usable value wins):
//  1. CF-Connecting-IP, verbatim
//  2. X-Real-IP, verbatim
//  3. X-Forwarded-For, first comma separated entry, trimmed (may be "")
//  4. host part of remoteAddr
//
// A header whose value is not a valid header string is skipped.
func ClientIP(h http.Header, remoteAddr string) string {
	if ip, ok := headerValue(h, HeaderCFConnectingIP); ok {
		return ip
	}

	if ip, ok := headerValue(h, HeaderRealIP); ok {
		return ip
	}

	if forwarded, ok := headerValue(h, HeaderForwardedFor); ok {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	return peerIP(remoteAddr)
}

// ConnectionType names the forwarding mechanism detected on the request.
// Only header presence matters, not the value.
func ConnectionType(h http.Header) string {
	switch {
	case hasHeader(h, HeaderCFConnectingIP):
		return ConnectionCloudflare
	case hasHeader(h, HeaderRealIP):
		return ConnectionProxy
	case hasHeader(h, HeaderForwardedFor):
		return ConnectionForwarded
	default:
		return ConnectionDirect
	}
}

// UserAgent returns the User-Agent header or UnknownUserAgent
func UserAgent(h http.Header) string {
	if ua, ok := headerValue(h, HeaderUserAgent); ok {
		return ua
	}
	return UnknownUserAgent
}

// IsMobile reports whether the user agent looks like a mobile device
func IsMobile(userAgent string) bool {
	for _, pattern := range mobilePatterns {
		if strings.Contains(userAgent, pattern) {
			return true
		}
	}
	return false
}

// IsTor reports whether an upstream proxy tagged the request as Tor traffic
func IsTor(h http.Header) bool {
	return hasHeader(h, HeaderTorExitNode) || hasHeader(h, HeaderTor)
}

// IsVPN flags the request as a VPN candidate. Any forwarded request counts.
func IsVPN(h http.Header, clientIP string) bool {
	if hasHeader(h, HeaderVPN) || hasHeader(h, HeaderForwardedFor) {
		return true
	}
	for _, prefix := range vpnPrefixes {
		if strings.HasPrefix(clientIP, prefix) {
			return true
		}
	}
	return false
}

// Headers flattens the request headers into name/value pairs.
//
// net/http moves the Host header out of the header map into Request.Host,
// so it is passed separately and emitted as "host" when non-empty.
// net/http also does not keep the wire order of distinct header names, so
// names are sorted rather than listed as received; values of a repeated
// header keep their received order. Names are lower-cased and values that
// are not valid header strings are dropped.
func Headers(host string, h http.Header) []models.HeaderPair {
	names := make([]string, 0, len(h)+1)
	for name := range h {
		names = append(names, name)
	}
	_, hasHost := h[HeaderHost]
	if host != "" && !hasHost {
		names = append(names, HeaderHost)
	}
	sort.Strings(names)

	pairs := make([]models.HeaderPair, 0, len(names))
	for _, name := range names {
		values := h[name]
		if name == HeaderHost && !hasHost {
			values = []string{host}
		}
		for _, value := range values {
			if !validHeaderValue(value) {
				continue
			}
			pairs = append(pairs, models.HeaderPair{
				Name:  strings.ToLower(name),
				Value: value,
			})
		}
	}
	return pairs
}

// hasHeader checks presence only; an empty value still counts
func hasHeader(h http.Header, name string) bool {
	return len(h.Values(name)) > 0
}

// headerValue returns the first value of a header if it is a valid string
func headerValue(h http.Header, name string) (string, bool) {
	values := h.Values(name)
	if len(values) == 0 {
		return "", false
	}
	if !validHeaderValue(values[0]) {
		return "", false
	}
	return values[0], true
}

// validHeaderValue accepts visible ASCII, space and tab
func validHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\t' {
			continue
		}
		if c < 0x20 || c >= 0x7f {
			return false
		}
	}
	return true
}

// peerIP strips the port from a transport address like "1.2.3.4:5678" or
// "[::1]:5678"
func peerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
