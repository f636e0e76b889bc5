package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.DocumentRenderer = (*Writer)(nil)

// Writer renders a domain.Layout as a .docx byte stream.
type Writer struct{}

// NewWriter creates a document writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Render serializes the layout into a complete OOXML package.
func (w *Writer) Render(layout domain.Layout) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/footer1.xml", footerXML(layout.Footer)},
		{"word/document.xml", documentXML(layout)},
	}

	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>
</Relationships>`

// House styles. Sizes are half-points, colors hex RGB.
const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults>
<w:rPrDefault><w:rPr><w:rFonts w:ascii="Arial Narrow" w:hAnsi="Arial Narrow"/><w:sz w:val="22"/></w:rPr></w:rPrDefault>
<w:pPrDefault><w:pPr><w:spacing w:before="120" w:after="120" w:line="276" w:lineRule="auto"/></w:pPr></w:pPrDefault>
</w:docDefaults>
<w:style w:type="paragraph" w:styleId="Heading1">
<w:name w:val="heading 1"/>
<w:pPr><w:spacing w:before="240" w:after="120"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="36"/><w:color w:val="003399"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Heading2">
<w:name w:val="heading 2"/>
<w:pPr><w:spacing w:before="200" w:after="80"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="28"/><w:color w:val="0066CC"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Heading3">
<w:name w:val="heading 3"/>
<w:pPr><w:spacing w:before="160" w:after="60"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="24"/><w:color w:val="0078D7"/></w:rPr>
</w:style>
</w:styles>`

// footerXML builds the centered footer with a live page number field.
func footerXML(text string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
	b.WriteString(`<w:r><w:rPr><w:sz w:val="18"/><w:color w:val="808080"/></w:rPr>`)
	b.WriteString(`<w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`)
	b.WriteString(`<w:r><w:rPr><w:sz w:val="18"/><w:color w:val="808080"/></w:rPr><w:fldChar w:fldCharType="begin"/></w:r>`)
	b.WriteString(`<w:r><w:rPr><w:sz w:val="18"/><w:color w:val="808080"/></w:rPr><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r>`)
	b.WriteString(`<w:r><w:rPr><w:sz w:val="18"/><w:color w:val="808080"/></w:rPr><w:fldChar w:fldCharType="end"/></w:r>`)
	b.WriteString(`</w:p></w:ftr>`)
	return b.String()
}

// documentXML builds the main document part: title page, page break,
// metadata table, content blocks and the section footer reference.
func documentXML(layout domain.Layout) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	b.WriteString(`<w:body>`)

	writeTitlePage(&b, layout)
	writeMetaTable(&b, layout.Meta)

	for _, block := range layout.Blocks {
		writeBlock(&b, block)
	}

	b.WriteString(`<w:sectPr><w:footerReference w:type="default" r:id="rId2"/>`)
	b.WriteString(`<w:pgSz w:w="11906" w:h="16838"/>`)
	b.WriteString(`<w:pgMar w:top="1417" w:right="1417" w:bottom="1134" w:left="1417" w:header="708" w:footer="708"/>`)
	b.WriteString(`</w:sectPr></w:body></w:document>`)
	return b.String()
}

func writeTitlePage(b *strings.Builder, layout domain.Layout) {
	centered(b, layout.Title, `<w:b/><w:sz w:val="48"/><w:color w:val="003399"/>`)
	emptyParagraph(b)
	centered(b, layout.Subtitle, `<w:i/><w:sz w:val="28"/><w:color w:val="646464"/>`)
	emptyParagraph(b)
	emptyParagraph(b)
	centered(b, layout.Standard, `<w:i/><w:sz w:val="26"/><w:color w:val="4682B4"/>`)
	emptyParagraph(b)
	centered(b, layout.Date, `<w:i/><w:sz w:val="24"/>`)

	// Page break after the title page.
	b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

func writeMetaTable(b *strings.Builder, meta [][2]string) {
	if len(meta) == 0 {
		return
	}

	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/>`)
	b.WriteString(`<w:tblBorders>`)
	for _, edge := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		b.WriteString(`<w:` + edge + ` w:val="single" w:sz="4" w:color="BFBFBF"/>`)
	}
	b.WriteString(`</w:tblBorders></w:tblPr>`)

	for _, row := range meta {
		b.WriteString(`<w:tr>`)
		cell(b, row[0], true)
		cell(b, row[1], false)
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
	emptyParagraph(b)
}

func cell(b *strings.Builder, text string, bold bool) {
	b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="0" w:type="auto"/></w:tcPr><w:p><w:r>`)
	if bold {
		b.WriteString(`<w:rPr><w:b/></w:rPr>`)
	}
	b.WriteString(`<w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p></w:tc>`)
}

func writeBlock(b *strings.Builder, block domain.Block) {
	switch block.Kind {
	case domain.BlockHeading1:
		styled(b, block.Text, "Heading1")
	case domain.BlockHeading2:
		styled(b, block.Text, "Heading2")
	case domain.BlockHeading3:
		styled(b, block.Text, "Heading3")
	case domain.BlockSubheading:
		boldParagraph(b, block.Text, 0)
	case domain.BlockStep:
		boldParagraph(b, block.Text, 284)
	case domain.BlockBullet:
		bullet(b, block.Text)
	default:
		paragraph(b, block.Text)
	}
}

func styled(b *strings.Builder, text, styleID string) {
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="` + styleID + `"/></w:pPr>`)
	b.WriteString(`<w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p>`)
}

func boldParagraph(b *strings.Builder, text string, indent int) {
	b.WriteString(`<w:p>`)
	if indent > 0 {
		b.WriteString(fmt.Sprintf(`<w:pPr><w:ind w:left="%d"/></w:pPr>`, indent))
	}
	b.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p>`)
}

func bullet(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:pPr><w:ind w:left="568" w:hanging="284"/></w:pPr>`)
	b.WriteString(`<w:r><w:t xml:space="preserve">` + escape("• "+text) + `</w:t></w:r></w:p>`)
}

func paragraph(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p>`)
}

func centered(b *strings.Builder, text, runProps string) {
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
	b.WriteString(`<w:r><w:rPr>` + runProps + `</w:rPr>`)
	b.WriteString(`<w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p>`)
}

func emptyParagraph(b *strings.Builder) {
	b.WriteString(`<w:p/>`)
}

// escape XML-escapes text content.
func escape(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails on writer errors, which bytes.Buffer never returns.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
