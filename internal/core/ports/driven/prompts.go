package driven

// Prompt template names understood by the PromptStore.
const (
	// PromptScenarioMain is the first-pass prompt: scaffold, theory,
	// starting situation and the first problem batch.
	PromptScenarioMain = "scenario_main"

	// PromptScenarioContinuation is the prompt for subsequent batches.
	PromptScenarioContinuation = "scenario_continuation"

	// PromptChecklist is the final-pass learning-objectives checklist.
	PromptChecklist = "checklist"

	// PromptTopicAnalysis asks the model for topics in a parseable format.
	PromptTopicAnalysis = "topic_analysis"

	// PromptSummarise compresses oversized document content before the
	// real generation prompt is issued.
	PromptSummarise = "summarise"
)

// PromptStore loads prompt templates by name. Implementations fall back
// to embedded defaults when a template is not customised.
type PromptStore interface {
	Load(name string) (string, error)
}
