package sanitize

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func TestHTMLEscapesEveryForbiddenCharacter(t *testing.T) {
	got := HTML(`<a href="x" onclick='y'>` + "`" + `&</a>`)
	assert.Equal(t, "&lt;a href=&quot;x&quot; onclick=&#x27;y&#x27;&gt;&#x60;&amp;&lt;&#x2F;a&gt;", got)
	assert.Equal(t, "", HTML(""))
	assert.Equal(t, "plain text", HTML("plain text"))
}

func TestHTMLRoundTripsThroughEntityDecoder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("&<>\"'`/ abcXYZ019éü\n\t;#")
	for i := 0; i < 500; i++ {
		n := rng.Intn(40)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		in := string(runes)
		out := HTML(in)

		assert.NotContainsf(t, out, "<", "input %q", in)
		assert.NotContainsf(t, out, ">", "input %q", in)
		assert.NotContainsf(t, out, `"`, "input %q", in)
		assert.NotContainsf(t, out, "'", "input %q", in)
		assert.NotContainsf(t, out, "`", "input %q", in)
		assert.NotContainsf(t, out, "/", "input %q", in)
		assert.Equalf(t, in, html.UnescapeString(out), "input %q", in)
	}
}

func TestAttr(t *testing.T) {
	assert.Equal(t, "a&#x3D;b", Attr("a=b"))
	assert.Equal(t, "Flow 1, v2.0_final-draft", Attr("Flow 1, v2.0_final-draft"))
	assert.Equal(t, "&quot; onmouseover&#x3D;&#x27;x&#x27;", Attr(`" onmouseover='x'`))
	assert.Equal(t, "&lt;&#x2F;&gt;&#x60;&amp;", Attr("</>`&"))
	assert.Equal(t, "naïve", Attr("naïve"))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "bold and italic", StripTags("<b>bold</b> and <i class=\"x\">italic</i>"))
	assert.Equal(t, "a < b", StripTags("a < b"))
	assert.Equal(t, "", StripTags("<br/>"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exactly", Truncate("exactly", 7))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "żół...", Truncate("żółw!", 3))

	long := strings.Repeat("x", DefaultTruncateLen+5)
	assert.Equal(t, strings.Repeat("x", DefaultTruncateLen)+"...", Truncate(long, 0))
}

func TestInput(t *testing.T) {
	t.Run("script block removed with its contents", func(t *testing.T) {
		assert.Equal(t, "safe text", Input("<script>alert(1)</script>safe text", 100))
	})

	t.Run("script match is case insensitive and spans lines", func(t *testing.T) {
		in := "before<SCRIPT type=\"text/javascript\">\nvar x = 1;\n</Script >after"
		assert.Equal(t, "beforeafter", Input(in, 100))
	})

	t.Run("trims before cleaning", func(t *testing.T) {
		assert.Equal(t, "hello", Input("   <b>hello</b>\n", 100))
	})

	t.Run("hard cut without ellipsis", func(t *testing.T) {
		assert.Equal(t, "abcde", Input("abcdefgh", 5))
	})

	t.Run("default length", func(t *testing.T) {
		out := Input(strings.Repeat("y", DefaultInputLen+10), 0)
		assert.Equal(t, DefaultInputLen, utf8.RuneCountInString(out))
	})
}

func TestInputNeverLeavesTagsOrExceedsLimit(t *testing.T) {
	tag := regexp.MustCompile(`<[^>]*>`)
	rng := rand.New(rand.NewSource(11))
	pieces := []string{"<", ">", "<script>", "</script>", "a", "b c", "<<", ">>", "/", "<img src=x>", "text"}
	for i := 0; i < 500; i++ {
		var b strings.Builder
		for j := rng.Intn(12); j >= 0; j-- {
			b.WriteString(pieces[rng.Intn(len(pieces))])
		}
		in := b.String()
		limit := 1 + rng.Intn(30)
		out := Input(in, limit)

		assert.LessOrEqualf(t, utf8.RuneCountInString(out), limit, "input %q", in)
		assert.Falsef(t, tag.MatchString(out), "input %q produced %q", in, out)
	}
}

func TestEnforceMaxLength(t *testing.T) {
	assert.Equal(t, "abc", EnforceMaxLength("abcdef", 3))
	assert.Equal(t, "abc", EnforceMaxLength("abc", 3))

	long := strings.Repeat("z", DefaultMaxLength+1)
	assert.Len(t, EnforceMaxLength(long, 0), DefaultMaxLength)
}
