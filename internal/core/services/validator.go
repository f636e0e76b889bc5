package services

import (
	"strings"

	"github.com/wmc-labs/ditele-cli/internal/core/domain"
)

// DefaultRequiredSections lists the section markers a complete document
// must contain, in their canonical order.
func DefaultRequiredSections() []string {
	return []string{
		"THEMENLISTE",
		"LERNZIELE",
		"THEORETISCHE GRUNDLAGEN",
		"AUSGANGSLAGE",
		"PROBLEM",
		"LÖSUNG",
		"CHECKLISTE",
	}
}

// Validator checks generated text for required section markers.
type Validator struct {
	required []string
}

// NewValidator creates a validator for the given section markers. A nil
// or empty list uses the defaults.
func NewValidator(required []string) *Validator {
	if len(required) == 0 {
		required = DefaultRequiredSections()
	}
	return &Validator{required: required}
}

// Validate reports which required sections occur in the text. A section
// is present when its marker appears at least once, case-insensitive.
// Validate always returns a report; the caller decides what a missing
// section means.
func (v *Validator) Validate(text string) domain.ValidationReport {
	lower := strings.ToLower(text)
	report := domain.ValidationReport{}
	for _, section := range v.required {
		if strings.Contains(lower, strings.ToLower(section)) {
			report.Present = append(report.Present, section)
		} else {
			report.Missing = append(report.Missing, section)
		}
	}
	return report
}
