package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com/a", "https://example.com/a"},
		{"  http://example.com  ", "http://example.com"},
		{"HTTPS://EXAMPLE.COM/x?y=1", "HTTPS://EXAMPLE.COM/x?y=1"},
		{"mailto:security@example.com", "mailto:security@example.com"},
		{"./relative/path", "./relative/path"},
		{"../up/one", "../up/one"},
		{"/root/relative", "/root/relative"},
		{"javascript:alert(1)", ""},
		{"JavaScript:alert(1)", ""},
		{"data:text/html;base64,PHNjcmlwdD4=", ""},
		{"file:///etc/passwd", ""},
		{"//evil.example.com/x", ""},
		{"relative/no/dot", ""},
		{"https://", ""},
		{"mailto:", ""},
		{"", ""},
		{"http://exa mple.com", ""},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, URL(tc.in), "URL(%q)", tc.in)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("isso@example.com"))
	assert.True(t, IsValidEmail("a.b+c@sub.example.mil"))
	assert.False(t, IsValidEmail("no-at.example.com"))
	assert.False(t, IsValidEmail("user@nodot"))
	assert.False(t, IsValidEmail("with space@example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidIP(t *testing.T) {
	for _, ok := range []string{"10.0.0.1", "255.255.255.255", "0.0.0.0", "::1", "fe80::1", "2001:db8::ff00:42:8329"} {
		assert.Truef(t, IsValidIP(ok), "expected %q valid", ok)
	}
	for _, bad := range []string{"256.0.0.1", "10.0.0", "1.2.3.4.5", "abcd", "fe80::zz", "", "10.0.0.1 "} {
		assert.Falsef(t, IsValidIP(bad), "expected %q invalid", bad)
	}
}
