// Package services defines the error taxonomy shared by pipeline components
// and their external collaborators. Sentinel markers classify failures so the
// sync orchestrator can decide what is retryable and the CLI can report
// consistent outcomes.
package services
