package utils

import (
	"net"
	"net/http"
	"strings"
)

// ExtractClientIP returns the client IP address for a request.
//
// Forwarding headers are honoured only when the direct peer is on a private
// or loopback network, i.e. a reverse proxy in front of the service. The
// priority is:
//  1. X-Forwarded-For (first entry)
//  2. X-Real-IP
//  3. RemoteAddr without its port
func ExtractClientIP(r *http.Request) string {
	peer := hostOnly(r.RemoteAddr)

	if IsPrivateIP(peer) {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	return peer
}

// IsPrivateIP reports whether ip is loopback, private (RFC 1918 / RFC 4193)
// or link-local. Unparseable input is not private.
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate() ||
		parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast()
}

// hostOnly strips the port from "host:port" and "[v6]:port" addresses.
func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
