package sanitize

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	ipv4Pattern  = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)
	ipv6Pattern  = regexp.MustCompile(`^[0-9a-fA-F:]+$`)
)

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// URL returns the trimmed value when it is safe for an href or src
// attribute, and "" otherwise.
func URL(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "./") || strings.HasPrefix(trimmed, "../") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "/") {
		// protocol relative, not root relative
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, `/\`) {
			return ""
		}
		return trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if !allowedSchemes[scheme] {
		return ""
	}
	if scheme == "mailto" {
		if u.Opaque == "" && u.Path == "" {
			return ""
		}
		return trimmed
	}
	if u.Host == "" {
		return ""
	}
	return trimmed
}

// IsValidEmail is a UI hint, not an RFC 5322 check.
func IsValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// IsValidIP accepts a dotted quad with every octet in 0-255, or anything made
// only of hex digits and colons that has at least one colon.
func IsValidIP(value string) bool {
	if m := ipv4Pattern.FindStringSubmatch(value); m != nil {
		for _, octet := range m[1:] {
			n, err := strconv.Atoi(octet)
			if err != nil || n > 255 {
				return false
			}
		}
		return true
	}
	return strings.Contains(value, ":") && ipv6Pattern.MatchString(value)
}
