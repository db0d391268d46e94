package driving

import (
	"context"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

// PatientService provides the application-facing patient operations. Reads
// go through the client-side cache; writes go to the backend and invalidate
// the affected cache entries, except the optimistic add-note path which
// applies a provisional local mutation first.
type PatientService interface {
	// List returns the patient collection, from cache when fresh.
	List(ctx context.Context) ([]domain.Patient, error)

	// Get returns one patient, from cache when fresh.
	Get(ctx context.Context, id int) (*domain.Patient, error)

	// GetFresh returns one patient directly from the backend, bypassing
	// the cache, and stores the result.
	GetFresh(ctx context.Context, id int) (*domain.Patient, error)

	// Create validates and creates a patient, then invalidates the
	// collection. Validation failures are returned as domain.FieldErrors
	// and never reach the backend.
	Create(ctx context.Context, payload domain.CreatePatientPayload) (*domain.Patient, domain.FieldErrors, error)

	// Update validates and applies a partial update, then invalidates the
	// patient and the collection.
	Update(ctx context.Context, id int, payload domain.UpdatePatientPayload) (*domain.Patient, domain.FieldErrors, error)

	// Delete removes a patient and invalidates the patient and collection.
	Delete(ctx context.Context, id int) error

	// AddNote appends a note optimistically: the cached record gains a
	// provisional note immediately, and is rolled back to its prior
	// snapshot if the backend call fails.
	AddNote(ctx context.Context, id int, payload domain.AddNotePayload) (*domain.Patient, error)
}
