package decode

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"

	"github.com/arcadia-data/preview/pkg/classify"
)

// Document is the decoded representation of a DOCX artifact: a single
// HTML fragment with embedded images inlined as data URIs.
type Document struct {
	HTML string
}

type docxRelationships struct {
	XMLName       xml.Name `xml:"Relationships"`
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// DOCX converts a Word document to HTML. Paragraphs, headings, bold and
// italic runs, tables, line breaks and embedded images are preserved.
// Elements the converter does not understand are skipped and logged as
// non-fatal notices; only structural failures surface as errors.
func DOCX(data []byte, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, newError(classify.FamilyDocx, fmt.Sprintf("open archive: %v", err))
	}

	rels := readDocxRelationships(zr, logger)
	media := readDocxMedia(zr)

	doc := readZipFile(zr, "word/document.xml")
	if doc == nil {
		return nil, newError(classify.FamilyDocx, "missing word/document.xml")
	}

	out, err := convertDocxBody(doc, rels, media, logger)
	if err != nil {
		return nil, newError(classify.FamilyDocx, fmt.Sprintf("convert body: %v", err))
	}
	return &Document{HTML: out}, nil
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close() //nolint:errcheck // best-effort close
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil
		}
		return b
	}
	return nil
}

func readDocxRelationships(zr *zip.Reader, logger *slog.Logger) map[string]string {
	out := map[string]string{}
	raw := readZipFile(zr, "word/_rels/document.xml.rels")
	if raw == nil {
		return out
	}
	var rels docxRelationships
	if err := xml.Unmarshal(raw, &rels); err != nil {
		logger.Debug("docx: unreadable relationships part, images will be dropped", "error", err)
		return out
	}
	for _, r := range rels.Relationships {
		out[r.ID] = strings.TrimPrefix(r.Target, "/")
	}
	return out
}

func readDocxMedia(zr *zip.Reader) map[string][]byte {
	out := map[string][]byte{}
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/media/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			continue
		}
		out[strings.TrimPrefix(f.Name, "word/")] = b
	}
	return out
}

func imageMime(name string) string {
	switch classify.Extension(strings.ToLower(name)) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

func convertDocxBody(doc []byte, rels map[string]string, media map[string][]byte, logger *slog.Logger) (string, error) {
	var (
		out  strings.Builder
		para strings.Builder

		paraTag     = "p"
		inParaProps bool
		inRunProps  bool
		inText      bool
		bold        bool
		italic      bool
	)

	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para.Reset()
				paraTag = "p"
			case "pPr":
				inParaProps = true
			case "pStyle":
				if inParaProps {
					if style := xmlAttr(t, "val"); strings.HasPrefix(style, "Heading") {
						if lvl := style[len("Heading"):]; len(lvl) == 1 && lvl >= "1" && lvl <= "6" {
							paraTag = "h" + lvl
						}
					}
				}
			case "rPr":
				inRunProps = true
			case "r":
				if !inRunProps {
					bold, italic = false, false
				}
			case "b":
				if inRunProps {
					bold = true
				}
			case "i":
				if inRunProps {
					italic = true
				}
			case "t":
				inText = true
			case "br":
				para.WriteString("<br/>")
			case "tbl":
				out.WriteString("<table>")
			case "tr":
				out.WriteString("<tr>")
			case "tc":
				out.WriteString("<td>")
			case "blip":
				rid := xmlAttr(t, "embed")
				target, ok := rels[rid]
				if !ok {
					logger.Debug("docx: image relationship not found", "rid", rid)
					continue
				}
				blob, ok := media[target]
				if !ok {
					logger.Debug("docx: image media part missing", "target", target)
					continue
				}
				para.WriteString(fmt.Sprintf(`<img src="data:%s;base64,%s"/>`,
					imageMime(target), base64.StdEncoding.EncodeToString(blob)))
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				out.WriteString("<" + paraTag + ">" + para.String() + "</" + paraTag + ">")
				para.Reset()
			case "pPr":
				inParaProps = false
			case "rPr":
				inRunProps = false
			case "t":
				inText = false
			case "tbl":
				out.WriteString("</table>")
			case "tr":
				out.WriteString("</tr>")
			case "tc":
				out.WriteString("</td>")
			}
		case xml.CharData:
			if !inText {
				continue
			}
			s := html.EscapeString(string(t))
			if bold {
				s = "<strong>" + s + "</strong>"
			}
			if italic {
				s = "<em>" + s + "</em>"
			}
			para.WriteString(s)
		}
	}

	return out.String(), nil
}

func xmlAttr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
