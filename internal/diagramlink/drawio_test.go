package diagramlink

import (
	"bytes"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainModel = `<mxGraphModel><root>
  <mxCell id="0"/>
  <mxCell id="1" parent="0"/>
  <mxCell id="web" value="&lt;b&gt;Web&lt;/b&gt;&lt;br&gt;Portal" style="rounded=1;html=1;" vertex="1" parent="1"/>
  <mxCell id="db" value="CUI  DB" style="shape=cylinder" vertex="1" parent="1"/>
  <mxCell id="e1" value="HTTPS" edge="1" source="web" target="db" parent="1"/>
  <UserObject id="fw" label="Perimeter Firewall"><mxCell style="shape=firewall" vertex="1" parent="1"/></UserObject>
</root></mxGraphModel>`

func TestReadDrawioPlainPage(t *testing.T) {
	doc, err := ReadDrawio(strings.NewReader(`<mxfile host="app.diagrams.net"><diagram id="p1" name="Enclave">` + plainModel + `</diagram></mxfile>`))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)

	page := doc.Pages[0]
	assert.Equal(t, "p1", page.ID)
	assert.Equal(t, "Enclave", page.Name)
	require.Len(t, page.Shapes, 3)
	assert.Equal(t, DrawioShape{ID: "web", Label: "Web Portal", Style: "rounded=1;html=1;"}, page.Shapes[0])
	assert.Equal(t, "CUI DB", page.Shapes[1].Label)
	assert.Equal(t, "fw", page.Shapes[2].ID)
	assert.Equal(t, "Perimeter Firewall", page.Shapes[2].Label)
	assert.Equal(t, []DrawioLink{{ID: "e1", Source: "web", Target: "db", Label: "HTTPS"}}, page.Links)
	assert.Equal(t, "1 page(s), 3 shape(s), 1 connector(s)", doc.Summary())
}

func TestReadDrawioCompressedPage(t *testing.T) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	require.NoError(t, err)
	_, err = fw.Write([]byte(url.PathEscape(plainModel)))
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	payload := base64.StdEncoding.EncodeToString(buf.Bytes())
	doc, err := ReadDrawio(strings.NewReader(`<mxfile><diagram id="c1" name="Compressed">` + payload + `</diagram><diagram id="c2" name="Blank"></diagram></mxfile>`))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)
	assert.Len(t, doc.Pages[0].Shapes, 3)
	assert.Len(t, doc.Pages[0].Links, 1)
	assert.Empty(t, doc.Pages[1].Shapes)
}

func TestReadDrawioBareModel(t *testing.T) {
	doc, err := ReadDrawio(strings.NewReader(plainModel))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Len(t, doc.Pages[0].Shapes, 3)
}

func TestReadDrawioRejectsOtherDocuments(t *testing.T) {
	_, err := ReadDrawio(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	assert.ErrorIs(t, err, ErrNotDrawio)

	_, err = ReadDrawio(strings.NewReader(`not xml at all`))
	assert.ErrorIs(t, err, ErrNotDrawio)

	_, err = ReadDrawio(strings.NewReader(`<mxfile><diagram name="x">!!not-base64!!</diagram></mxfile>`))
	assert.Error(t, err)
}
