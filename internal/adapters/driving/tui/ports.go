// Package tui provides the interactive terminal dashboard for medboard.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Patients manages the patient roster and visit notes.
	Patients driving.PatientService

	// Assistant is the conversational assistant. It is optional; when nil
	// the chat panel is unavailable and every other screen still works.
	Assistant driving.AssistantService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(patients driving.PatientService, assistant driving.AssistantService) *Ports {
	return &Ports{
		Patients:  patients,
		Assistant: assistant,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Patients == nil {
		return ErrMissingPatientService
	}
	return nil
}
