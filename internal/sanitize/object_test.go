package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject(t *testing.T) {
	in := map[string]any{
		"name":      " <b>ITAR DMS</b> ",
		"quantity":  float64(3),
		"encrypted": true,
		"owner":     nil,
		"tags":      []any{"<i>cui</i>", 2, map[string]any{"note": "<script>x()</script>ok"}},
		"__proto__": map[string]any{"admin": true},
		"nested": map[string]any{
			"constructor": "bad",
			"prototype":   "bad",
			"labels":      []string{"<u>a</u>", "  "},
		},
	}

	out, ok := Object(in, 100).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "ITAR DMS", out["name"])
	assert.Equal(t, float64(3), out["quantity"])
	assert.Equal(t, true, out["encrypted"])
	assert.Nil(t, out["owner"])
	assert.NotContains(t, out, "__proto__")

	tags := out["tags"].([]any)
	assert.Equal(t, "cui", tags[0])
	assert.Equal(t, 2, tags[1])
	assert.Equal(t, map[string]any{"note": "ok"}, tags[2])

	nested := out["nested"].(map[string]any)
	assert.NotContains(t, nested, "constructor")
	assert.NotContains(t, nested, "prototype")
	assert.Equal(t, []string{"a"}, nested["labels"])

	// the input is not modified
	assert.Equal(t, " <b>ITAR DMS</b> ", in["name"])
}

func TestObjectTruncatesFields(t *testing.T) {
	out := Object(map[string]any{"d": "abcdefgh"}, 3).(map[string]any)
	assert.Equal(t, "abc", out["d"])
}

func TestSafeParse(t *testing.T) {
	t.Run("strips prototype keys at every level", func(t *testing.T) {
		v, err := SafeParse(`{"__proto__":{"polluted":true},"constructor":{"prototype":{}},"apps":[{"name":"x","__proto__":{}}]}`)
		require.NoError(t, err)

		m := v.(map[string]any)
		assert.NotContains(t, m, "__proto__")
		assert.NotContains(t, m, "constructor")
		apps := m["apps"].([]any)
		assert.Equal(t, map[string]any{"name": "x"}, apps[0])
	})

	t.Run("non-object values pass through", func(t *testing.T) {
		v, err := SafeParse(`[1,"two",null]`)
		require.NoError(t, err)
		assert.Equal(t, []any{float64(1), "two", nil}, v)
	})

	t.Run("malformed input yields nil", func(t *testing.T) {
		v, err := SafeParse(`{"applications": [`)
		assert.Error(t, err)
		assert.Nil(t, v)
	})
}
