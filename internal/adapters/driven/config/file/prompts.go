package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wmc-labs/ditele-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads generation prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
// Placeholder contract per template:
//   - scenario_main:         document context, topic list, first and last problem number
//   - scenario_continuation: same order as scenario_main
//   - checklist:             topic list
//   - topic_analysis:        document context
//   - summarise:             target character count, document content
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptScenarioMain: `Du bist ein erfahrener IT-Ausbilder und Praxisexperte für Fachinformatiker Anwendungsentwicklung.

AUFGABE: Erstelle ein PRAXISNAHES Lernszenario nach dem DiTeLe-Standard.

DOKUMENT-INHALT (Auszug):
%s

IDENTIFIZIERTE THEMEN (je Thema = 1 Problem-Lösungs-Paar):
%s

STRUKTUR (EXAKT EINHALTEN):

THEMENLISTE
Behandelte Themen als Aufzählung.

LERNZIELE
Nach diesem Szenario können Sie: ein messbares, konkretes Lernziel je Thema
(z.B. "Kostenarten unterscheiden", nicht "Kostenkalkulation verstehen").

THEORETISCHE GRUNDLAGEN
Ausführliche theoretische Erklärung, MINDESTENS 700 Wörter. Überblick und
Relevanz in der IT-Praxis, Kernkonzepte klar erklärt, Verbindungen zwischen
den Themen, praktische Anwendungsbeispiele. Einfache Sprache für
Auszubildende, Fachbegriffe werden eingeführt und erklärt.

AUSGANGSLAGE
Du bist Auszubildende/r zum Fachinformatiker für Anwendungsentwicklung bei
einer konkreten Firma (Name, Größe, Standort, Geschäftsfeld). Beschreibe
deine Rolle im Team und ein realistisches IT-Projekt, das ALLE Themen
natürlich integriert.

PROBLEME UND LÖSUNGEN
Erstelle PROBLEM %d bis PROBLEM %d, je Thema EIN vollständiges
Problem-Lösungs-Paar. Jedes Paar hat:

PROBLEM n: [Titel]
SITUATION: konkrete Situation im Projekt
AUFGABE: was zu tun ist
RANDBEDINGUNGEN: Einschränkungen und Vorgaben
ERWARTETE ERGEBNISSE: was am Ende vorliegen muss

LÖSUNG n: [Titel]
Schritt 1: ... (mit WARUM-Erklärung)
Schritt 2: ... (alle Schritte bis zum Ende, KEINE Abbrüche)
ERGEBNIS: das vollständige Resultat
ERKLÄRUNG: warum dieser Weg
ALTERNATIVE ANSÄTZE: mindestens ein anderer Weg
HÄUFIGE FEHLER: typische Stolperfallen

KRITISCHE ANFORDERUNGEN:
1. JEDE Lösung MUSS VOLLSTÄNDIG sein (alle Schritte bis zum Ende)
2. NIEMALS mitten in einem Schritt aufhören, kein "..." oder "etc."
3. Realistische IT-Szenarien, anfängerfreundlich
4. KEINE Markdown-Formatierung (**, ##, Codeblöcke)
5. KEINE Emojis oder Sonderzeichen
6. KEINE Erwähnung von "Bot", "KI", "AI"
7. Deutsche Sprache, professionell, direkt verwendbar

Erstelle jetzt das vollständige Szenario (THEMENLISTE bis PROBLEM-Abschnitt, OHNE Checkliste):`,

	driven.PromptScenarioContinuation: `Du bist ein erfahrener IT-Ausbilder und Praxisexperte für Fachinformatiker Anwendungsentwicklung.

AUFGABE: Erstelle die NÄCHSTEN Problem-Lösungs-Paare für das laufende DiTeLe-Szenario.

DOKUMENT-INHALT (Auszug):
%s

JETZT ZU BEARBEITEN:
%s

NUMMERIERUNG: Starte bei PROBLEM %d und ende bei PROBLEM %d. NICHT bei 1 neu anfangen.

WICHTIG:
- Verwende DIESELBEN Namen (Firma, Projekt) wie in den vorherigen Abschnitten
- Halte den gleichen Stil und die gleiche Qualität wie bisher
- Je Thema EIN vollständiges Paar mit SITUATION, AUFGABE, RANDBEDINGUNGEN,
  ERWARTETE ERGEBNISSE, dann LÖSUNG mit Schritt 1..n, ERGEBNIS, ERKLÄRUNG,
  ALTERNATIVE ANSÄTZE, HÄUFIGE FEHLER

KRITISCH - VOLLSTÄNDIGKEIT:
- JEDE Lösung muss VOLLSTÄNDIG sein, ALLE Schritte bis zum Ende
- NIEMALS mitten in einem Schritt aufhören
- KEINE Markdown-Formatierung, KEINE Emojis
- KEINE Erwähnung von "Bot", "KI", "AI"
- Deutsche Sprache, professionell

Erstelle jetzt die vollständigen Problem-Lösungs-Paare:`,

	driven.PromptChecklist: `Erstelle eine Lernziel-Checkliste basierend auf folgenden Themen.

THEMEN:
%s

AUFGABE:
Formuliere jedes Lernziel als Frage mit "Können Sie...?" oder "Sind Sie in der Lage...?"

FORMAT:

CHECKLISTE

Können Sie jetzt...?

[ ] [Lernziel 1 als Frage formuliert]
[ ] [Lernziel 2 als Frage formuliert]
[ ] [alle weiteren Lernziele als Fragen]

WICHTIG:
- Verwende [ ] statt Emojis
- Jede Frage beginnt mit Großbuchstaben
- Fragen sind präzise und messbar
- Deutsche Sprache

Erstelle jetzt die Checkliste:`,

	driven.PromptTopicAnalysis: `Analysiere das folgende Dokument und identifiziere die wichtigsten Lernthemen.

DOKUMENT:
%s

Gib für jedes Thema einen Block im folgenden Format aus, Blöcke getrennt durch eine Zeile mit "---":

TOPIC: [Name des Themas]
KEYWORDS: [kommagetrennte Schlüsselbegriffe]
COMPLEXITY: [low, medium oder high]
---

Maximal 7 Themen, keine weiteren Erläuterungen.`,

	driven.PromptSummarise: `Fasse den folgenden Dokumentinhalt in höchstens %d Zeichen zusammen.
Erhalte alle fachlichen Kernaussagen, Begriffe und Zahlenwerte, die für
Lernaufgaben relevant sind. Keine Einleitung, keine Bewertung.

INHALT:
%s

Zusammenfassung:`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.ditele/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".ditele", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# DiTeLe Prompts

This directory contains customisable prompts used for scenario generation.

## Files

- ` + "`scenario_main.txt`" + ` - First pass: scaffold, theory and the first problem batch
- ` + "`scenario_continuation.txt`" + ` - Subsequent problem batches
- ` + "`checklist.txt`" + ` - Final learning-objectives checklist
- ` + "`topic_analysis.txt`" + ` - Topic extraction from source documents
- ` + "`summarise.txt`" + ` - Compression of oversized documents

## Customisation

Edit any file to customise generation behaviour. Changes take effect on the
next run.

## Format Placeholders

Prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (document context, topic list)
- ` + "`%d`" + ` - Integer (problem numbers, character limits)

Ensure customised prompts maintain placeholders in the same order as the
defaults: scenario prompts take document context, topic list, first problem
number, last problem number.
`
	return os.WriteFile(path, []byte(content), 0600)
}
