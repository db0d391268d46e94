package driven

import "github.com/medboard-labs/medboard-cli/internal/core/domain"

// PatientCache is the client-side read-through cache shared by the patient
// service and the assistant. It holds one collection entry plus one entry
// per patient identifier. Mutation discipline: writers invalidate entries
// after a backend write so the next read refetches; the sole direct write
// path is the optimistic add-note protocol below.
type PatientCache interface {
	// Collection returns the cached patient collection. ok is false when
	// the entry is absent or has been invalidated.
	Collection() (patients []domain.Patient, ok bool)

	// SetCollection stores the authoritative patient collection.
	SetCollection(patients []domain.Patient)

	// InvalidateCollection marks the collection stale.
	InvalidateCollection()

	// Patient returns the cached record for one identifier.
	Patient(id int) (patient *domain.Patient, ok bool)

	// SetPatient stores one patient record.
	SetPatient(patient domain.Patient)

	// InvalidatePatient marks one patient entry stale.
	InvalidatePatient(id int)

	// Snapshot captures the current cached record for an identifier so an
	// optimistic mutation can be rolled back. The returned snapshot is nil
	// when nothing is cached for the identifier.
	Snapshot(id int) *domain.Patient

	// Restore puts a snapshot back, rolling back an optimistic mutation.
	// A nil snapshot invalidates the entry instead.
	Restore(id int, snapshot *domain.Patient)

	// Reset drops every entry. Used by tests and on shutdown.
	Reset()
}
