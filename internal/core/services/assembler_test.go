package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// asmMockRenderer implements driven.DocumentRenderer and captures the
// layout it was handed.
type asmMockRenderer struct {
	layout domain.Layout
	out    []byte
	err    error
}

func (m *asmMockRenderer) Render(layout domain.Layout) ([]byte, error) {
	m.layout = layout
	return m.out, m.err
}

var asmGenerated = time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

func TestAssembleBuildsTitlePageAndMeta(t *testing.T) {
	renderer := &asmMockRenderer{out: []byte("docx")}
	a := NewAssembler(renderer, DefaultAssemblerConfig())

	out, err := a.Assemble("AUSGANGSLAGE\nSituation: Ein Team plant.", AssemblyMetadata{
		SourceName: "01_03_FR-660.docx",
		Generated:  asmGenerated,
		WordCount:  1200,
		PairCount:  4,
	})
	require.NoError(t, err)

	assert.Equal(t, "DiTeLe_01_03_FR-660_20260829_143000.docx", out.Name)
	assert.Equal(t, []byte("docx"), out.Content)

	layout := renderer.layout
	assert.Equal(t, "Enabler Scenario 01_03_FR-660", layout.Title)
	assert.Equal(t, "Basierend auf: 01_03_FR-660.docx", layout.Subtitle)
	assert.Equal(t, "DiTeLe-Standard", layout.Standard)
	assert.Contains(t, layout.Date, "29.08.2026")
	assert.Contains(t, layout.Footer, "DiTeLe")

	require.NotEmpty(t, layout.Meta)
	assert.Equal(t, [2]string{"Quelldokument", "01_03_FR-660.docx"}, layout.Meta[0])
	assert.Contains(t, layout.Meta, [2]string{"Struktur", "vollständig"})
}

func TestAssembleRecordsMissingSectionsInMeta(t *testing.T) {
	renderer := &asmMockRenderer{out: []byte("docx")}
	a := NewAssembler(renderer, DefaultAssemblerConfig())

	_, err := a.Assemble("Text", AssemblyMetadata{
		SourceName: "doc.docx",
		Generated:  asmGenerated,
		Missing:    []string{"LERNZIELE", "CHECKLISTE"},
	})
	require.NoError(t, err)
	assert.Contains(t, renderer.layout.Meta, [2]string{"Fehlende Abschnitte", "LERNZIELE, CHECKLISTE"})
}

func TestAssembleRendererFailureIsAssemblyError(t *testing.T) {
	renderer := &asmMockRenderer{err: errors.New("writer broke")}
	a := NewAssembler(renderer, DefaultAssemblerConfig())

	_, err := a.Assemble("Text", AssemblyMetadata{SourceName: "doc.docx", Generated: asmGenerated})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAssemblyFailed)
}

func TestParseBlocksClassifiesLines(t *testing.T) {
	text := `THEMENLISTE
================================================================
1. Netzplantechnik

PROBLEM 1: Vorwärtsrechnung
Situation: Das Team braucht einen Plan.
LÖSUNG 1: Berechnung
Schritt 1: FAZ bestimmen
- Puffer notieren
[ ] Netzplan erstellt
Normaler Absatz mit Erklärung.
CHECKLISTE`

	blocks := parseBlocks(text)

	kinds := make([]domain.BlockKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []domain.BlockKind{
		domain.BlockHeading1,
		domain.BlockParagraph,
		domain.BlockHeading2,
		domain.BlockSubheading,
		domain.BlockHeading3,
		domain.BlockStep,
		domain.BlockBullet,
		domain.BlockBullet,
		domain.BlockParagraph,
		domain.BlockHeading1,
	}, kinds)
}

func TestParseBlocksKeepsBodyLinesWithHeadingWords(t *testing.T) {
	text := `Die Themenliste oben fasst alles zusammen.
Probleme entstehen oft bei der Rückwärtsrechnung.
Lösungen dafür zeigt der nächste Abschnitt.
LERNZIELE:`

	blocks := parseBlocks(text)
	require.Len(t, blocks, 4)
	assert.Equal(t, domain.BlockParagraph, blocks[0].Kind)
	assert.Equal(t, domain.BlockParagraph, blocks[1].Kind)
	assert.Equal(t, domain.BlockParagraph, blocks[2].Kind)
	assert.Equal(t, domain.BlockHeading1, blocks[3].Kind)
}

func TestParseBlocksRewritesSectionTitles(t *testing.T) {
	blocks := parseBlocks("THEMENLISTE\nCHECKLISTE")
	require.Len(t, blocks, 2)
	assert.Equal(t, "Behandelte Themen", blocks[0].Text)
	assert.Equal(t, "Lernziel-Checkliste", blocks[1].Text)
}

func TestParseBlocksDropsRulers(t *testing.T) {
	blocks := parseBlocks("====\n----\nInhalt")
	require.Len(t, blocks, 1)
	assert.Equal(t, "Inhalt", blocks[0].Text)
}

func TestOutputNameContainsBaseNameAndTimestamp(t *testing.T) {
	a := NewAssembler(&asmMockRenderer{}, DefaultAssemblerConfig())
	name := a.OutputName("Projektplanung.pdf", asmGenerated)
	assert.Equal(t, "DiTeLe_Projektplanung_20260829_143000.docx", name)
}
