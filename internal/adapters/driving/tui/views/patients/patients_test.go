package patients

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/messages"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/styles"
	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

// MockPatientService implements driving.PatientService for testing.
type MockPatientService struct {
	ListFunc   func(ctx context.Context) ([]domain.Patient, error)
	DeleteFunc func(ctx context.Context, id int) error
}

func (m *MockPatientService) List(ctx context.Context) ([]domain.Patient, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Patient{}, nil
}

func (m *MockPatientService) Get(ctx context.Context, id int) (*domain.Patient, error) {
	return nil, nil
}

func (m *MockPatientService) GetFresh(ctx context.Context, id int) (*domain.Patient, error) {
	return nil, nil
}

func (m *MockPatientService) Create(ctx context.Context, payload domain.CreatePatientPayload) (*domain.Patient, domain.FieldErrors, error) {
	return nil, nil, nil
}

func (m *MockPatientService) Update(ctx context.Context, id int, payload domain.UpdatePatientPayload) (*domain.Patient, domain.FieldErrors, error) {
	return nil, nil, nil
}

func (m *MockPatientService) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockPatientService) AddNote(ctx context.Context, id int, payload domain.AddNotePayload) (*domain.Patient, error) {
	return nil, nil
}

func makePatients(n int) []domain.Patient {
	out := make([]domain.Patient, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Patient{
			ID:        i,
			FirstName: fmt.Sprintf("Patient%d", i),
			LastName:  "Test",
			Age:       30 + i,
		})
	}
	return out
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})

	require.NotNil(t, view)
	assert.Empty(t, view.Patients())
	assert.Zero(t, view.Selected())
	assert.Zero(t, view.Page())
}

func TestInit_LoadsPatients(t *testing.T) {
	mock := &MockPatientService{
		ListFunc: func(ctx context.Context) ([]domain.Patient, error) {
			return makePatients(3), nil
		},
	}
	view := NewView(styles.DefaultStyles(), mock)

	cmd := view.Init()
	require.NotNil(t, cmd)
	assert.True(t, view.Loading())

	msg := cmd()
	loaded, ok := msg.(messages.PatientsLoaded)
	require.True(t, ok)
	assert.Len(t, loaded.Patients, 3)
	assert.NoError(t, loaded.Err)
}

func TestUpdate_PatientsLoaded(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})

	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(2)})

	assert.False(t, view.Loading())
	assert.Len(t, view.Patients(), 2)
}

func TestUpdate_PatientsLoadedError(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})

	view, _ = view.Update(messages.PatientsLoaded{Err: errors.New("backend down")})

	require.Error(t, view.Error())
	assert.Contains(t, view.View(), "backend down")
}

func TestNavigation_UpDown(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(3)})

	view, _ = view.Update(keyMsg("j"))
	assert.Equal(t, 1, view.Selected())

	view, _ = view.Update(keyMsg("k"))
	assert.Equal(t, 0, view.Selected())

	// Cursor stops at the edges.
	view, _ = view.Update(keyMsg("k"))
	assert.Equal(t, 0, view.Selected())
}

func TestNavigation_Paging(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(20)})

	view, _ = view.Update(keyMsg("l"))
	assert.Equal(t, 1, view.Page())
	assert.Equal(t, pageSize, view.Selected())

	view, _ = view.Update(keyMsg("l"))
	assert.Equal(t, 2, view.Page())

	// Last page, cannot advance further.
	view, _ = view.Update(keyMsg("l"))
	assert.Equal(t, 2, view.Page())

	view, _ = view.Update(keyMsg("h"))
	assert.Equal(t, 1, view.Page())
}

func TestNavigation_CursorCrossesPageBoundary(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(12)})

	for i := 0; i < pageSize; i++ {
		view, _ = view.Update(keyMsg("j"))
	}

	assert.Equal(t, pageSize, view.Selected())
	assert.Equal(t, 1, view.Page())
}

func TestSelect_EmitsPatientSelected(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(3)})
	view, _ = view.Update(keyMsg("j"))

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	selected, ok := cmd().(messages.PatientSelected)
	require.True(t, ok)
	assert.Equal(t, 2, selected.ID)
}

func TestNew_EmitsEditPatientCreateMode(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})

	_, cmd := view.Update(keyMsg("n"))
	require.NotNil(t, cmd)

	edit, ok := cmd().(messages.EditPatient)
	require.True(t, ok)
	assert.Nil(t, edit.Patient)
}

func TestEdit_EmitsEditPatientWithRecord(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(2)})

	_, cmd := view.Update(keyMsg("e"))
	require.NotNil(t, cmd)

	edit, ok := cmd().(messages.EditPatient)
	require.True(t, ok)
	require.NotNil(t, edit.Patient)
	assert.Equal(t, 1, edit.Patient.ID)
}

func TestDelete_CallsServiceAndReloads(t *testing.T) {
	deleted := 0
	mock := &MockPatientService{
		DeleteFunc: func(ctx context.Context, id int) error {
			deleted = id
			return nil
		},
	}
	view := NewView(styles.DefaultStyles(), mock)
	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(2)})

	_, cmd := view.Update(keyMsg("d"))
	require.NotNil(t, cmd)

	msg := cmd()
	removed, ok := msg.(messages.PatientDeleted)
	require.True(t, ok)
	assert.Equal(t, 1, removed.ID)
	assert.Equal(t, 1, deleted)

	// A successful delete triggers a reload.
	view, cmd = view.Update(msg)
	require.NotNil(t, cmd)
	assert.True(t, view.Loading())
}

func TestReloadClampsCursor(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(12)})
	for i := 0; i < 11; i++ {
		view, _ = view.Update(keyMsg("j"))
	}

	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(2)})

	assert.Equal(t, 1, view.Selected())
	assert.Zero(t, view.Page())
}

func TestView_RendersRows(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: makePatients(2)})

	out := view.View()

	assert.Contains(t, out, "Patients")
	assert.Contains(t, out, "Patient1 Test")
	assert.Contains(t, out, "Page 1 of 1")
}

func TestView_StatsCountRecordedVisits(t *testing.T) {
	visit := domain.NewDate(time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC))
	roster := makePatients(3)
	roster[0].LastVisitDate = &visit

	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: roster})

	assert.Contains(t, view.View(), "3 total · 1 with a recorded visit")
}

func TestView_Empty(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockPatientService{})
	view, _ = view.Update(messages.PatientsLoaded{Patients: nil})

	assert.Contains(t, view.View(), "No patients on record")
}
