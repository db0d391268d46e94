package services

import (
	"context"
	"time"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driven"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driving"
	"github.com/medboard-labs/medboard-cli/internal/logger"
)

// Ensure PatientManager implements the interface.
var _ driving.PatientService = (*PatientManager)(nil)

// PatientManager provides patient CRUD on top of the records client with a
// read-through cache. Writes invalidate the affected cache entries so the
// next read refetches; the add-note path additionally applies an optimistic
// local mutation that is rolled back if the backend rejects it.
type PatientManager struct {
	records driven.RecordsClient
	cache   driven.PatientCache

	// now is swapped out by tests.
	now func() time.Time
}

// NewPatientManager creates a new patient manager.
func NewPatientManager(records driven.RecordsClient, cache driven.PatientCache) *PatientManager {
	return &PatientManager{
		records: records,
		cache:   cache,
		now:     time.Now,
	}
}

// List returns the patient collection, from cache when fresh.
func (m *PatientManager) List(ctx context.Context) ([]domain.Patient, error) {
	if patients, ok := m.cache.Collection(); ok {
		logger.Debug("patients: collection cache hit (%d patients)", len(patients))
		return patients, nil
	}

	patients, err := m.records.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	m.cache.SetCollection(patients)
	return patients, nil
}

// Get returns one patient, from cache when fresh.
func (m *PatientManager) Get(ctx context.Context, id int) (*domain.Patient, error) {
	if patient, ok := m.cache.Patient(id); ok {
		logger.Debug("patients: cache hit for patient %d", id)
		return patient, nil
	}
	return m.GetFresh(ctx, id)
}

// GetFresh returns one patient directly from the backend, bypassing the
// cache, and stores the result. The summarize path uses this so summaries
// never describe stale notes.
func (m *PatientManager) GetFresh(ctx context.Context, id int) (*domain.Patient, error) {
	patient, err := m.records.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	m.cache.SetPatient(*patient)
	return patient, nil
}

// Create validates and creates a patient, then invalidates the collection.
func (m *PatientManager) Create(ctx context.Context, payload domain.CreatePatientPayload) (*domain.Patient, domain.FieldErrors, error) {
	if errs := payload.Validate(m.now()); !errs.Ok() {
		return nil, errs, nil
	}

	patient, err := m.records.CreatePatient(ctx, payload)
	if err != nil {
		return nil, nil, err
	}
	m.cache.InvalidateCollection()
	return patient, nil, nil
}

// Update validates and applies a partial update, then invalidates the
// patient and the collection.
func (m *PatientManager) Update(ctx context.Context, id int, payload domain.UpdatePatientPayload) (*domain.Patient, domain.FieldErrors, error) {
	if errs := payload.Validate(m.now()); !errs.Ok() {
		return nil, errs, nil
	}

	patient, err := m.records.UpdatePatient(ctx, id, payload)
	if err != nil {
		return nil, nil, err
	}
	m.cache.InvalidatePatient(id)
	m.cache.InvalidateCollection()
	return patient, nil, nil
}

// Delete removes a patient and invalidates the patient and collection.
func (m *PatientManager) Delete(ctx context.Context, id int) error {
	if err := m.records.DeletePatient(ctx, id); err != nil {
		return err
	}
	m.cache.InvalidatePatient(id)
	m.cache.InvalidateCollection()
	return nil
}

// AddNote appends a note using a snapshot, apply, commit-or-rollback
// protocol:
//
//  1. Snapshot the cached record.
//  2. Apply a provisional note (and bumped last-visit date) to the cache so
//     readers see the new note immediately.
//  3. Call the backend. On success, invalidate the patient and collection
//     so the next read fetches the authoritative record; on failure,
//     restore the snapshot.
func (m *PatientManager) AddNote(ctx context.Context, id int, payload domain.AddNotePayload) (*domain.Patient, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	snapshot := m.cache.Snapshot(id)
	m.applyProvisionalNote(id, payload.Content)

	patient, err := m.records.AddNote(ctx, id, payload)
	if err != nil {
		logger.Warn("patients: add note to %d failed, rolling back: %v", id, err)
		m.cache.Restore(id, snapshot)
		return nil, err
	}

	m.cache.InvalidatePatient(id)
	m.cache.InvalidateCollection()
	return patient, nil
}

// applyProvisionalNote writes the optimistic version of the record into the
// cache. The note carries a temporary identifier that the authoritative
// refetch replaces.
func (m *PatientManager) applyProvisionalNote(id int, content string) {
	cached, ok := m.cache.Patient(id)
	if !ok {
		return
	}

	now := m.now()
	provisional := *cached
	provisional.Notes = append(append([]domain.Note{}, cached.Notes...), domain.Note{
		ID:        now.UnixMilli(),
		Content:   content,
		CreatedAt: domain.NewDate(now),
	})
	visited := domain.NewDate(now)
	provisional.LastVisitDate = &visited
	m.cache.SetPatient(provisional)
}
