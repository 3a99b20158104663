package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() domain.Document {
	doc := domain.NewDocument(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	doc.Metadata.OrgName = `Acme "Defense" <Labs>`
	doc.Applications = append(doc.Applications, domain.Application{
		ID:            "app-1-aaaaa",
		Name:          `<script>alert("x")</script>Portal`,
		AssetCategory: "legacy-value",
		Description:   "handles contract data",
	})
	doc.Assets = append(doc.Assets, domain.Asset{ID: "asset-1-bbbbb", Name: "db01", Quantity: 2, AssetType: domain.AssetServer})
	doc.Diagrams = append(doc.Diagrams,
		domain.Diagram{ID: "diag-1-ccccc", Name: "Boundary", ApplicationID: "app-1-aaaaa", Source: domain.SourceFigma, SourceURL: "https://www.figma.com/file/abcDEF123456/Boundary"},
		domain.Diagram{ID: "diag-1-ddddd", Name: "Bad link", ApplicationID: "global", SourceURL: "javascript:alert(1)"},
	)
	doc.Zones = append(doc.Zones, domain.Zone{ID: "zone-1-eeeee", Name: "Enclave", ApplicationIDs: []string{"app-1-aaaaa", "app-gone"}})
	return *doc
}

func TestWriteHTMLEscapesStoredValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleDocument()))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;alert(&quot;x&quot;)&lt;&#x2F;script&gt;Portal")
	assert.Contains(t, out, "Acme &quot;Defense&quot; &lt;Labs&gt;")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `href="https&#x3A;&#x2F;&#x2F;www.figma.com&#x2F;file&#x2F;abcDEF123456&#x2F;Boundary"`)
	assert.Contains(t, out, "All applications")
	// unknown categories render as CUI
	assert.Contains(t, out, `data-category="cui"`)
}

func TestWriteHTMLEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, *domain.NewDocument(time.Now())))
	assert.Contains(t, buf.String(), "<h1>CMMC Inventory</h1>")
	assert.Equal(t, 5, bytes.Count(buf.Bytes(), []byte("None recorded.")))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteHTMLReportsWriteErrors(t *testing.T) {
	assert.Error(t, WriteHTML(failingWriter{}, sampleDocument()))
}
