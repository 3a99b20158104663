package diagramlink

import (
	"testing"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFigmaURL(t *testing.T) {
	t.Run("design link with node", func(t *testing.T) {
		link, err := ParseFigmaURL(" https://www.figma.com/design/AbCdEf123456XyZ/CUI-Data-Flow?node-id=12-34&t=x ")
		require.NoError(t, err)
		assert.Equal(t, "design", link.Kind)
		assert.Equal(t, "AbCdEf123456XyZ", link.FileKey)
		assert.Equal(t, "CUI Data Flow", link.FileName)
		assert.Equal(t, "12-34", link.NodeID)
		assert.Equal(t, "https://www.figma.com/embed?embed_host=share&url=https%3A%2F%2Fwww.figma.com%2Fdesign%2FAbCdEf123456XyZ%2FCUI-Data-Flow%3Fnode-id%3D12-34%26t%3Dx", link.EmbedURL)
	})

	t.Run("legacy file link without name", func(t *testing.T) {
		link, err := ParseFigmaURL("https://figma.com/file/0123456789abcdef")
		require.NoError(t, err)
		assert.Equal(t, "file", link.Kind)
		assert.Equal(t, "0123456789abcdef", link.FileKey)
		assert.Empty(t, link.FileName)
		assert.Empty(t, link.NodeID)
	})

	t.Run("rejections", func(t *testing.T) {
		_, err := ParseFigmaURL("")
		assert.ErrorIs(t, err, ErrEmptyURL)

		for _, bad := range []string{
			"http://www.figma.com/file/0123456789abcdef",
			"https://www.figma.com/community/file/0123456789abcdef",
			"https://evil.com/figma.com/file/0123456789abcdef",
			"https://www.figma.com/file/short",
		} {
			_, err := ParseFigmaURL(bad)
			assert.ErrorIsf(t, err, ErrNotFigmaURL, "url %q", bad)
		}
	})
}

func TestParseLucidChartURL(t *testing.T) {
	cases := map[string]string{
		"https://lucid.app/lucidchart/4f1c2a9e-1111-2222-3333-444455556666/edit?page=0_0": "4f1c2a9e-1111-2222-3333-444455556666",
		"https://lucid.app/lucidchart/abc-123/view":                                        "abc-123",
		"https://lucid.app/documents/embedded/abc-123":                                     "abc-123",
		"https://lucid.app/publicSegments/view/seg-9/image.png":                            "seg-9",
		"https://www.lucidchart.com/documents/edit/legacy-77":                              "legacy-77",
	}
	for raw, id := range cases {
		link, err := ParseLucidChartURL(raw)
		require.NoErrorf(t, err, "url %q", raw)
		assert.Equal(t, id, link.DocumentID)
		assert.Equal(t, "https://lucid.app/documents/embedded/"+id, link.EmbedURL)
	}

	_, err := ParseLucidChartURL("   ")
	assert.ErrorIs(t, err, ErrEmptyURL)
	_, err = ParseLucidChartURL("https://lucid.app/users/login")
	assert.ErrorIs(t, err, ErrNotLucidURL)
}

func TestValidateSourceURL(t *testing.T) {
	embed, err := ValidateSourceURL(domain.SourceLucidChart, "https://lucid.app/lucidchart/abc/edit")
	require.NoError(t, err)
	assert.Equal(t, "https://lucid.app/documents/embedded/abc", embed)

	_, err = ValidateSourceURL(domain.SourceFigma, "https://lucid.app/lucidchart/abc/edit")
	assert.ErrorIs(t, err, ErrNotFigmaURL)

	_, err = ValidateSourceURL(domain.SourceImage, "https://example.com/a.png")
	assert.ErrorIs(t, err, ErrNotLinkedSource)
}
