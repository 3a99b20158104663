// Package sanitize is the trusted path from free text to markup and to
// storage: escaping, input cleaning, URL and address checks, and a guard
// that keeps the storage medium below its capacity.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultTruncateLen  = 1000
	DefaultInputLen     = 5000
	DefaultMaxLength    = 10000
	ellipsis            = "..."
	safeAttrPunctuation = ",.-_ "
)

var htmlEntities = map[rune]string{
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
	'"':  "&quot;",
	'\'': "&#x27;",
	'`':  "&#x60;",
	'/':  "&#x2F;",
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"`", "&#x60;",
	"/", "&#x2F;",
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	scriptPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
)

// HTML escapes & < > " ' ` and / so the result can sit inside element text or
// a double-quoted attribute. It is not tag aware and escapes again if called
// on already escaped text.
func HTML(value string) string {
	if value == "" {
		return ""
	}
	return htmlReplacer.Replace(value)
}

// Attr escapes everything HTML does, and additionally encodes any other ASCII
// punctuation as a numeric entity.
func Attr(value string) string {
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if entity, ok := htmlEntities[r]; ok {
			b.WriteString(entity)
			continue
		}
		if r < 0x80 && !isAlnum(r) && !strings.ContainsRune(safeAttrPunctuation, r) {
			fmt.Fprintf(&b, "&#x%X;", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func StripTags(value string) string {
	return tagPattern.ReplaceAllString(value, "")
}

// Truncate cuts value to maxLen characters and marks the cut with an
// ellipsis. A non-positive maxLen means DefaultTruncateLen.
func Truncate(value string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultTruncateLen
	}
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	return string(runes[:maxLen]) + ellipsis
}

// Input cleans untrusted free text. Script blocks go first, contents
// included, then every remaining tag, then a hard cut to maxLen characters.
func Input(value string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultInputLen
	}
	out := strings.TrimSpace(value)
	out = scriptPattern.ReplaceAllString(out, "")
	out = StripTags(out)
	return cut(out, maxLen)
}

// EnforceMaxLength is the last guard before a value is persisted.
func EnforceMaxLength(value string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return cut(value, maxLen)
}

func cut(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	return string(runes[:maxLen])
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
