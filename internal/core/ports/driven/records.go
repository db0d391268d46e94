package driven

import (
	"context"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

// RecordsClient provides typed operations over the patient-records REST API.
// It carries no business logic beyond response-shape normalisation; every
// method maps to exactly one HTTP call. Non-2xx responses surface as errors;
// the list endpoint never errors on an unexpected body shape, only on
// transport or HTTP failure.
type RecordsClient interface {
	// ListPatients fetches the full patient collection. A bare JSON array
	// and a {"patients": [...]} envelope both normalise to a plain slice;
	// any other shape normalises to an empty slice.
	ListPatients(ctx context.Context) ([]domain.Patient, error)

	// GetPatient fetches a single patient by identifier.
	GetPatient(ctx context.Context, id int) (*domain.Patient, error)

	// CreatePatient creates a patient and returns the backend's record.
	CreatePatient(ctx context.Context, payload domain.CreatePatientPayload) (*domain.Patient, error)

	// UpdatePatient applies a partial update and returns the updated record.
	UpdatePatient(ctx context.Context, id int, payload domain.UpdatePatientPayload) (*domain.Patient, error)

	// DeletePatient removes a patient. The backend answers 204 or an empty
	// body on success.
	DeletePatient(ctx context.Context, id int) error

	// AddNote appends a note to a patient and returns the updated record.
	AddNote(ctx context.Context, id int, payload domain.AddNotePayload) (*domain.Patient, error)
}
