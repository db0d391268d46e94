// Package memory provides an in-memory patient cache. Nothing survives a
// process restart; every run starts cold.
package memory

import (
	"sync"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driven"
)

// Ensure PatientStore implements the interface.
var _ driven.PatientCache = (*PatientStore)(nil)

// PatientStore is an in-memory implementation of driven.PatientCache.
// Values are copied on the way in and out so callers can never mutate a
// cached record through a shared slice or pointer.
type PatientStore struct {
	mu         sync.RWMutex
	collection []domain.Patient
	hasAll     bool
	patients   map[int]domain.Patient
}

// NewPatientStore creates a new in-memory patient cache.
func NewPatientStore() *PatientStore {
	return &PatientStore{
		patients: make(map[int]domain.Patient),
	}
}

// Collection returns the cached patient collection.
func (s *PatientStore) Collection() ([]domain.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasAll {
		return nil, false
	}
	return copyPatients(s.collection), true
}

// SetCollection stores the authoritative patient collection.
func (s *PatientStore) SetCollection(patients []domain.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection = copyPatients(patients)
	s.hasAll = true
}

// InvalidateCollection marks the collection stale.
func (s *PatientStore) InvalidateCollection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection = nil
	s.hasAll = false
}

// Patient returns the cached record for one identifier.
func (s *PatientStore) Patient(id int) (*domain.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patient, ok := s.patients[id]
	if !ok {
		return nil, false
	}
	out := copyPatient(patient)
	return &out, true
}

// SetPatient stores one patient record.
func (s *PatientStore) SetPatient(patient domain.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[patient.ID] = copyPatient(patient)
}

// InvalidatePatient marks one patient entry stale.
func (s *PatientStore) InvalidatePatient(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.patients, id)
}

// Snapshot captures the current cached record for rollback. Nil when the
// identifier is not cached.
func (s *PatientStore) Snapshot(id int) *domain.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patient, ok := s.patients[id]
	if !ok {
		return nil
	}
	out := copyPatient(patient)
	return &out
}

// Restore puts a snapshot back. A nil snapshot invalidates the entry.
func (s *PatientStore) Restore(id int, snapshot *domain.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot == nil {
		delete(s.patients, id)
		return
	}
	s.patients[id] = copyPatient(*snapshot)
}

// Reset drops every entry.
func (s *PatientStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection = nil
	s.hasAll = false
	s.patients = make(map[int]domain.Patient)
}

func copyPatient(p domain.Patient) domain.Patient {
	out := p
	if p.Notes != nil {
		out.Notes = make([]domain.Note, len(p.Notes))
		copy(out.Notes, p.Notes)
	}
	if p.LastVisitDate != nil {
		d := *p.LastVisitDate
		out.LastVisitDate = &d
	}
	if p.UpdatedAt != nil {
		d := *p.UpdatedAt
		out.UpdatedAt = &d
	}
	return out
}

func copyPatients(patients []domain.Patient) []domain.Patient {
	out := make([]domain.Patient, len(patients))
	for i, p := range patients {
		out[i] = copyPatient(p)
	}
	return out
}
