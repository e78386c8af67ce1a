package netutil

import (
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"
)

// MaxUserAgentLength caps user agents written to logs.
const MaxUserAgentLength = 256

// NormalizeIP returns the bare IP from "ip", "ip:port" or "[ipv6]:port",
// without zone. ok is false when nothing parseable was found.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().WithZone("").String(), true
	}
	candidates := []string{raw}
	if strings.HasPrefix(raw, "[") {
		if end := strings.Index(raw, "]"); end > 0 {
			candidates = append(candidates, raw[1:end])
		}
	} else if idx := strings.LastIndex(raw, ":"); idx > 0 {
		candidates = append(candidates, raw[:idx])
	}
	for _, c := range candidates {
		if addr, err := netip.ParseAddr(c); err == nil {
			return addr.WithZone("").String(), true
		}
	}
	return raw, false
}

// ClientIP reports the caller address of r. Proxy headers are expected to have
// been folded into RemoteAddr already (chi's RealIP) when the proxy is trusted.
func ClientIP(r *http.Request) string {
	if ip, ok := NormalizeIP(r.RemoteAddr); ok {
		return ip
	}
	return r.RemoteAddr
}

// TruncateUserAgent trims ua to MaxUserAgentLength runes.
func TruncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	n := 0
	for i := range ua {
		if n == MaxUserAgentLength {
			return ua[:i]
		}
		n++
	}
	return ua
}
