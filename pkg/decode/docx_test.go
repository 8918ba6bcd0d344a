package decode

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, parts map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
            xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
            xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Report</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r>
      <w:r><w:t xml:space="preserve"> and plain &amp; escaped</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><a:blip r:embed="rId1"/></w:r>
    </w:p>
  </w:body>
</w:document>`

const docxRels = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="image" Target="media/pixel.png"/>
</Relationships>`

func TestDOCXConvertsToHTML(t *testing.T) {
	pixel := []byte{0x89, 0x50, 0x4E, 0x47}
	data := buildDocx(t, map[string][]byte{
		"word/document.xml":            []byte(docxBody),
		"word/_rels/document.xml.rels": []byte(docxRels),
		"word/media/pixel.png":         pixel,
	})

	doc, err := DOCX(data, nil)
	require.NoError(t, err)

	assert.Contains(t, doc.HTML, "<h1>Report</h1>")
	assert.Contains(t, doc.HTML, "<strong>bold</strong>")
	assert.Contains(t, doc.HTML, "&amp; escaped")
	assert.Contains(t, doc.HTML, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pixel))
}

func TestDOCXMissingImageIsNonFatal(t *testing.T) {
	// Unresolvable image relationship: logged, not an error.
	data := buildDocx(t, map[string][]byte{
		"word/document.xml": []byte(docxBody),
	})

	doc, err := DOCX(data, nil)
	require.NoError(t, err)
	assert.NotContains(t, doc.HTML, "<img")
	assert.Contains(t, doc.HTML, "<h1>Report</h1>")
}

func TestDOCXMissingDocumentPart(t *testing.T) {
	data := buildDocx(t, map[string][]byte{"word/other.xml": []byte("<x/>")})
	_, err := DOCX(data, nil)
	require.Error(t, err)
}

func TestDOCXNotAnArchive(t *testing.T) {
	_, err := DOCX([]byte("plain bytes"), nil)
	require.Error(t, err)

	var derr *Error
	require.ErrorAs(t, err, &derr)
}
