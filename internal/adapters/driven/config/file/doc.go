// Package file provides file-based implementations of driven port interfaces.
// These adapters read configuration from the local filesystem.
//
// Adapters:
//   - Config: typed TOML run configuration
//   - PromptStore: user-editable prompt templates with embedded defaults
package file
