package domain

// BlockKind classifies a layout block for the document writer.
type BlockKind string

const (
	// BlockHeading1 is a top-level section heading.
	BlockHeading1 BlockKind = "heading1"
	// BlockHeading2 is a problem heading.
	BlockHeading2 BlockKind = "heading2"
	// BlockHeading3 is a solution heading.
	BlockHeading3 BlockKind = "heading3"
	// BlockSubheading is a bold inline label line (Situation:, Aufgabe:, ...).
	BlockSubheading BlockKind = "subheading"
	// BlockStep is a bold step line (Schritt n:).
	BlockStep BlockKind = "step"
	// BlockBullet is a bulleted list item.
	BlockBullet BlockKind = "bullet"
	// BlockParagraph is body text.
	BlockParagraph BlockKind = "paragraph"
)

// Block is one formatted unit of the assembled document body.
type Block struct {
	Kind BlockKind
	Text string
}

// Layout is the styled structure handed to the document writer. It is a
// pure value: the assembler produces it, the writer serializes it.
type Layout struct {
	// Title page.
	Title    string
	Subtitle string
	Standard string
	Date     string

	// Meta is the metadata table at the top of the body: label/value rows
	// (source name, generation date, quality indicators).
	Meta [][2]string

	Blocks []Block

	Footer string
}
