package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// AssemblerConfig sets document framing.
type AssemblerConfig struct {
	// TitlePrefix is prepended to the source base name on the title
	// page, e.g. "Enabler Scenario".
	TitlePrefix string

	// Standard is the standard label shown on the title page.
	Standard string

	// FilePrefix is prepended to the output file name.
	FilePrefix string
}

// DefaultAssemblerConfig returns the standard document framing.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		TitlePrefix: "Enabler Scenario",
		Standard:    "DiTeLe-Standard",
		FilePrefix:  "DiTeLe",
	}
}

func (c AssemblerConfig) withDefaults() AssemblerConfig {
	def := DefaultAssemblerConfig()
	if c.TitlePrefix == "" {
		c.TitlePrefix = def.TitlePrefix
	}
	if c.Standard == "" {
		c.Standard = def.Standard
	}
	if c.FilePrefix == "" {
		c.FilePrefix = def.FilePrefix
	}
	return c
}

// AssemblyMetadata carries the per-document facts shown on the title
// page and in the metadata table.
type AssemblyMetadata struct {
	SourceName string
	Generated  time.Time
	WordCount  int
	PairCount  int
	Missing    []string
}

// Assembler turns cleaned document text into a styled output file. It is
// a pure transformation: parsing here, rendering in the injected
// renderer, no network or storage access in either.
type Assembler struct {
	renderer driven.DocumentRenderer
	cfg      AssemblerConfig
}

// NewAssembler creates an assembler over the given renderer.
func NewAssembler(renderer driven.DocumentRenderer, cfg AssemblerConfig) *Assembler {
	return &Assembler{renderer: renderer, cfg: cfg.withDefaults()}
}

// Assemble parses the text into a layout and renders it. Renderer
// failures are not recoverable for the document and surface as
// domain.ErrAssemblyFailed.
func (a *Assembler) Assemble(text string, meta AssemblyMetadata) (*domain.OutputFile, error) {
	layout := a.buildLayout(text, meta)
	content, err := a.renderer.Render(layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrAssemblyFailed, meta.SourceName, err)
	}
	name := a.OutputName(meta.SourceName, meta.Generated)
	logger.Debug("assembler: rendered %s (%d bytes)", name, len(content))
	return &domain.OutputFile{Name: name, Content: content}, nil
}

// OutputName builds the output file name: prefix, source base name and a
// timestamp.
func (a *Assembler) OutputName(sourceName string, generated time.Time) string {
	base := baseName(sourceName)
	return fmt.Sprintf("%s_%s_%s.docx", a.cfg.FilePrefix, base, generated.Format("20060102_150405"))
}

func (a *Assembler) buildLayout(text string, meta AssemblyMetadata) domain.Layout {
	base := baseName(meta.SourceName)
	layout := domain.Layout{
		Title:    fmt.Sprintf("%s %s", a.cfg.TitlePrefix, base),
		Subtitle: fmt.Sprintf("Basierend auf: %s", meta.SourceName),
		Standard: a.cfg.Standard,
		Date:     fmt.Sprintf("Erstellt am: %s", meta.Generated.Format("02.01.2006 15:04")),
		Meta:     metaRows(meta),
		Blocks:   parseBlocks(text),
		Footer:   fmt.Sprintf("FIAE DiTeLe-Szenario | Generiert am %s", meta.Generated.Format("02.01.2006 15:04")),
	}
	return layout
}

func metaRows(meta AssemblyMetadata) [][2]string {
	rows := [][2]string{
		{"Quelldokument", meta.SourceName},
		{"Generiert am", meta.Generated.Format("02.01.2006 15:04")},
		{"Wortanzahl Quelle", fmt.Sprintf("%d", meta.WordCount)},
		{"Problem/Lösung-Paare", fmt.Sprintf("%d", meta.PairCount)},
	}
	if len(meta.Missing) > 0 {
		rows = append(rows, [2]string{"Fehlende Abschnitte", strings.Join(meta.Missing, ", ")})
	} else {
		rows = append(rows, [2]string{"Struktur", "vollständig"})
	}
	return rows
}

// Section names that become level-1 headings, with their display titles.
var sectionHeadings = []struct {
	marker string
	title  string
}{
	{"THEMENLISTE", "Behandelte Themen"},
	{"LERNZIELE", "Lernziele"},
	{"THEORETISCHE GRUNDLAGEN", "Theoretische Grundlagen"},
	{"AUSGANGSLAGE", "Ausgangslage"},
	{"CHECKLISTE", "Lernziel-Checkliste"},
}

var subHeadingPrefixes = []string{
	"SITUATION:", "AUFGABE:", "RANDBEDINGUNGEN:", "ERWARTETE ERGEBNISSE:",
	"ERGEBNIS:", "ERKLÄRUNG:", "ALTERNATIVE ANSÄTZE:", "HÄUFIGE FEHLER:",
}

var (
	stepLine     = regexp.MustCompile(`(?i)^Schritt \d+:`)
	problemLine  = regexp.MustCompile(`(?i)^PROBLEM \d+`)
	solutionLine = regexp.MustCompile(`(?i)^LÖSUNG \d+`)
)

// parseBlocks walks the cleaned text line by line and classifies each
// line into a layout block. Ruler lines (==== or ----) are dropped.
func parseBlocks(text string) []domain.Block {
	var blocks []domain.Block
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isRuler(line) {
			continue
		}
		blocks = append(blocks, classifyLine(line))
	}
	return blocks
}

func classifyLine(line string) domain.Block {
	upper := strings.ToUpper(line)

	for _, s := range sectionHeadings {
		if isSectionMarker(upper, s.marker) {
			return domain.Block{Kind: domain.BlockHeading1, Text: s.title}
		}
	}
	if problemLine.MatchString(line) {
		return domain.Block{Kind: domain.BlockHeading2, Text: line}
	}
	if solutionLine.MatchString(line) {
		return domain.Block{Kind: domain.BlockHeading3, Text: line}
	}
	for _, prefix := range subHeadingPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return domain.Block{Kind: domain.BlockSubheading, Text: line}
		}
	}
	if stepLine.MatchString(line) {
		return domain.Block{Kind: domain.BlockStep, Text: line}
	}
	if marker, ok := bulletMarker(line); ok {
		return domain.Block{Kind: domain.BlockBullet, Text: strings.TrimSpace(line[len(marker):])}
	}
	return domain.Block{Kind: domain.BlockParagraph, Text: line}
}

// isSectionMarker reports whether the line is the given section marker
// itself, allowing only a trailing colon. A marker appearing inside a
// sentence does not make the line a heading.
func isSectionMarker(upper, marker string) bool {
	if !strings.HasPrefix(upper, marker) {
		return false
	}
	rest := strings.TrimSpace(upper[len(marker):])
	return rest == "" || rest == ":"
}

func bulletMarker(line string) (string, bool) {
	for _, marker := range []string{"[ ]", "[x]", "[!]", "-", "•", "☐", "✓", "✔"} {
		if strings.HasPrefix(line, marker) {
			return marker, true
		}
	}
	return "", false
}

func isRuler(line string) bool {
	if len(line) < 3 {
		return false
	}
	first := line[0]
	if first != '=' && first != '-' {
		return false
	}
	for i := 1; i < len(line); i++ {
		if line[i] != first {
			return false
		}
	}
	return true
}

// baseName strips a known document extension from a file name.
func baseName(name string) string {
	for _, ext := range []string{".docx", ".pdf", ".txt", ".gdoc"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
