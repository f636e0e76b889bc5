package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
	"github.com/wmc-labs/ditele-cli/internal/logger"
)

// CleanerConfig sets the post-processing behavior.
type CleanerConfig struct {
	// Denylist terms are removed wherever they appear, case-insensitive
	// and word-boundary aware.
	Denylist []string

	// Labels are the enumerated pair labels to renumber, e.g.
	// PROBLEM and LÖSUNG.
	Labels []string
}

// DefaultCleanerConfig returns the standard denylist and labels.
func DefaultCleanerConfig() CleanerConfig {
	return CleanerConfig{
		Denylist: []string{"Chatbot", "Bot", "KI", "AI"},
		Labels:   []string{"PROBLEM", "LÖSUNG"},
	}
}

func (c CleanerConfig) withDefaults() CleanerConfig {
	def := DefaultCleanerConfig()
	if len(c.Denylist) == 0 {
		c.Denylist = def.Denylist
	}
	if len(c.Labels) == 0 {
		c.Labels = def.Labels
	}
	return c
}

// Cleaner concatenates generated sections and post-processes the result:
// denylist removal, markdown scrubbing, and pair-label renumbering.
type Cleaner struct {
	cfg      CleanerConfig
	denylist *regexp.Regexp
	labels   *regexp.Regexp
}

var (
	markdownEmphasis = regexp.MustCompile(`\*{1,3}([^*\n]+)\*{1,3}`)
	markdownHeading  = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	codeFence        = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	emojiRange       = regexp.MustCompile(`[ \t]?[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}\x{FE0F}]`)
	multiBlank       = regexp.MustCompile(`\n{3,}`)
)

// NewCleaner creates a cleaner. The denylist and labels are compiled once.
func NewCleaner(cfg CleanerConfig) *Cleaner {
	cfg = cfg.withDefaults()
	return &Cleaner{
		cfg:      cfg,
		denylist: compileDenylist(cfg.Denylist),
		labels:   compileLabels(cfg.Labels),
	}
}

func compileDenylist(terms []string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	// Longer terms first so "Chatbot" wins over "Bot".
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func compileLabels(labels []string) *regexp.Regexp {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)\s+(\d+)`)
}

// CleanAndRenumber post-processes the sections in batch-index order and
// joins them into the full document text. Pair labels are renumbered with
// a counter that runs across all sections, so pairs stay globally unique
// and gap-free even when each batch numbered from 1. Sections with no
// recognizable labels pass through the renumbering step unchanged.
func (c *Cleaner) CleanAndRenumber(sections []domain.GeneratedSection) string {
	ordered := make([]domain.GeneratedSection, len(sections))
	copy(ordered, sections)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].BatchIndex < ordered[j].BatchIndex })

	counter := 0
	parts := make([]string, 0, len(ordered))
	for _, s := range ordered {
		text := c.Clean(s.Content)
		text, counter = c.renumberSection(text, counter)
		parts = append(parts, text)
	}

	joined := strings.Join(parts, "\n\n")
	if counter > 0 {
		logger.Debug("cleaner: renumbered %d label pairs", counter)
	}
	return strings.TrimSpace(multiBlank.ReplaceAllString(joined, "\n\n"))
}

// Clean post-processes a standalone piece of text without renumbering.
func (c *Cleaner) Clean(text string) string {
	return strings.TrimSpace(c.removeDenied(c.scrub(text)))
}

// checkboxAscii rewrites checklist symbols to plain text before the
// emoji ranges remove them outright.
var checkboxAscii = strings.NewReplacer(
	"☐", "[ ]",
	"✓", "[x]",
	"✔", "[x]",
	"✅", "[x]",
	"❌", "[!]",
)

// scrub strips markdown artifacts and emoji the model tends to emit.
func (c *Cleaner) scrub(text string) string {
	text = checkboxAscii.Replace(text)
	text = codeFence.ReplaceAllString(text, "")
	text = markdownEmphasis.ReplaceAllString(text, "$1")
	text = markdownHeading.ReplaceAllString(text, "")
	text = emojiRange.ReplaceAllString(text, "")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return text
}

// removeDenied removes denylist terms. Whitespace is tidied only at the
// removal sites; spacing elsewhere in the text stays untouched.
func (c *Cleaner) removeDenied(text string) string {
	locs := c.denylist.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	out := make([]byte, 0, len(text))
	prev := 0
	for _, loc := range locs {
		out = append(out, text[prev:loc[0]]...)
		var skip int
		out, skip = tidySeam(out, text[loc[1]:])
		prev = loc[1] + skip
	}
	out = append(out, text[prev:]...)
	return string(out)
}

// tidySeam fixes the whitespace where a term was removed: a doubled
// space collapses to one, and a space left dangling before punctuation
// is dropped. Returns the adjusted output and how many bytes of the
// remaining text to skip.
func tidySeam(out []byte, rest string) ([]byte, int) {
	atSpace := len(out) == 0 || out[len(out)-1] == ' ' || out[len(out)-1] == '\t' || out[len(out)-1] == '\n'
	skip := 0
	if atSpace {
		for skip < len(rest) && (rest[skip] == ' ' || rest[skip] == '\t') {
			skip++
		}
	}
	if skip < len(rest) && strings.IndexByte(",.;:!?", rest[skip]) >= 0 {
		for len(out) > 0 && (out[len(out)-1] == ' ' || out[len(out)-1] == '\t') {
			out = out[:len(out)-1]
		}
	}
	return out, skip
}

// renumberSection rewrites the pair labels of one section. Old numbers
// map first-seen to the next counter value; both labels of a pair share
// the mapping, which preserves pairing even when the source numbering
// inside the section was out of order.
func (c *Cleaner) renumberSection(text string, counter int) (string, int) {
	assigned := map[string]int{}
	result := c.labels.ReplaceAllStringFunc(text, func(match string) string {
		sub := c.labels.FindStringSubmatch(match)
		label, oldNum := sub[1], sub[2]
		num, ok := assigned[oldNum]
		if !ok {
			counter++
			num = counter
			assigned[oldNum] = num
		}
		return fmt.Sprintf("%s %d", label, num)
	})
	return result, counter
}

// PairCount reports how many distinct pair numbers appear in the text.
func (c *Cleaner) PairCount(text string) int {
	seen := map[string]bool{}
	for _, m := range c.labels.FindAllStringSubmatch(text, -1) {
		seen[m[2]] = true
	}
	return len(seen)
}
