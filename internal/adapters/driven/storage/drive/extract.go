package drive

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// ExtractDocxText unpacks a .docx archive and returns its plain text.
// Paragraph structure is preserved as newlines; table cells within a row
// are joined with tabs. Headers, footers and drawing content are ignored.
func ExtractDocxText(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %v", domain.ErrUnsupportedFormat, err)
	}

	var document *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("%w: no word/document.xml", domain.ErrUnsupportedFormat)
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	text, err := documentText(rc)
	if err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}
	return text, nil
}

// documentText walks the WordprocessingML token stream. Full schema
// decoding is unnecessary: paragraphs (w:p), table cells (w:tc), rows
// (w:tr) and text runs (w:t) are enough to reconstruct readable text.
func documentText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		b       strings.Builder
		inCell  bool
		cellSep bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var text string
				if err := decoder.DecodeElement(&text, &t); err != nil {
					return "", err
				}
				if cellSep {
					b.WriteString("\t")
					cellSep = false
				}
				b.WriteString(text)
			case "tc":
				inCell = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if !inCell {
					b.WriteString("\n")
				}
			case "tc":
				inCell = false
				cellSep = true
			case "tr":
				cellSep = false
				b.WriteString("\n")
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
