// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewPatients is the paginated patient list.
	ViewPatients ViewType = iota
	// ViewPatientDetail shows a single patient record and its notes.
	ViewPatientDetail
	// ViewPatientForm is the create/edit patient form.
	ViewPatientForm
	// ViewChat is the AI assistant conversation.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewPatients:
		return "patients"
	case ViewPatientDetail:
		return "patient_detail"
	case ViewPatientForm:
		return "patient_form"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// PatientsLoaded carries the patient collection from the service.
type PatientsLoaded struct {
	Patients []domain.Patient
	Err      error
}

// PatientSelected signals a patient was chosen for the detail view.
type PatientSelected struct {
	ID int
}

// PatientLoaded carries a single patient record.
type PatientLoaded struct {
	Patient *domain.Patient
	Err     error
}

// EditPatient signals the form should open pre-filled with a record.
// A nil patient opens the form in create mode.
type EditPatient struct {
	Patient *domain.Patient
}

// PatientSaved signals a create or update attempt finished. Fields carries
// per-field validation messages when the payload was rejected client-side.
type PatientSaved struct {
	Patient *domain.Patient
	Fields  domain.FieldErrors
	Err     error
}

// PatientDeleted signals a patient was removed.
type PatientDeleted struct {
	ID  int
	Err error
}

// AssistantReplied signals one dispatch turn finished and the transcript
// has new assistant messages.
type AssistantReplied struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
