// Package patientdetail implements the single-patient record view.
package patientdetail

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/messages"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/styles"
	"github.com/medboard-labs/medboard-cli/internal/core/domain"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driving"
)

// View shows one patient record with its visit notes.
type View struct {
	styles         *styles.Styles
	patientService driving.PatientService
	ctx            context.Context

	patientID int
	patient   *domain.Patient
	loading   bool
	err       error

	width  int
	height int
}

// NewView creates a new patient detail view.
func NewView(s *styles.Styles, patientService driving.PatientService) *View {
	return &View{
		styles:         s,
		patientService: patientService,
		ctx:            context.Background(),
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	if ctx != nil {
		v.ctx = ctx
	}
}

// SetPatientID selects which patient the view loads.
func (v *View) SetPatientID(id int) {
	v.patientID = id
	v.patient = nil
	v.err = nil
}

// Init loads the selected patient.
func (v *View) Init() tea.Cmd {
	return v.loadPatient(false)
}

// loadPatient returns a command that fetches the patient. When fresh is
// set the cache is bypassed so new notes from other sessions appear.
func (v *View) loadPatient(fresh bool) tea.Cmd {
	v.loading = true
	v.err = nil
	id := v.patientID
	return func() tea.Msg {
		if v.patientService == nil {
			return messages.PatientLoaded{Err: fmt.Errorf("patient service unavailable")}
		}
		var (
			patient *domain.Patient
			err     error
		)
		if fresh {
			patient, err = v.patientService.GetFresh(v.ctx, id)
		} else {
			patient, err = v.patientService.Get(v.ctx, id)
		}
		return messages.PatientLoaded{Patient: patient, Err: err}
	}
}

// Update handles messages for the detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.PatientLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.patient = msg.Patient
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewPatients}
		}

	case "e":
		if v.patient != nil {
			patient := v.patient
			return v, func() tea.Msg {
				return messages.EditPatient{Patient: patient}
			}
		}

	case "d":
		if v.patient != nil {
			return v, v.deletePatient(v.patient.ID)
		}

	case "r":
		return v, v.loadPatient(true)
	}

	return v, nil
}

// deletePatient returns a command that removes the patient.
func (v *View) deletePatient(id int) tea.Cmd {
	return func() tea.Msg {
		err := v.patientService.Delete(v.ctx, id)
		return messages.PatientDeleted{ID: id, Err: err}
	}
}

// View renders the patient record.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Patient Details"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading patient..."))
		b.WriteString("\n")
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[r] retry  [esc] back"))
		b.WriteString("\n")
		return b.String()
	}

	if v.patient == nil {
		b.WriteString(v.styles.Muted.Render("No patient selected."))
		b.WriteString("\n")
		return b.String()
	}

	p := v.patient
	b.WriteString(v.styles.Subtitle.Render(p.FullName()))
	b.WriteString("\n\n")
	b.WriteString(v.renderField("Age", fmt.Sprintf("%d", p.Age)))
	b.WriteString(v.renderField("Gender", p.Gender))
	b.WriteString(v.renderField("Phone", p.Phone))
	b.WriteString(v.renderField("Email", p.Email))
	b.WriteString(v.renderField("Last visit", p.FormatLastVisit()))
	b.WriteString("\n")

	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Notes (%d)", len(p.Notes))))
	b.WriteString("\n")
	if len(p.Notes) == 0 {
		b.WriteString(v.styles.Muted.Render("No notes recorded."))
		b.WriteString("\n")
	}
	for _, note := range p.Notes {
		date := note.CreatedAt.Format("Jan 2, 2006")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("[%s] ", date)))
		b.WriteString(v.styles.Normal.Render(note.Content))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[e] edit  [d] delete  [a] assistant  [r] refresh  [esc] back"))
	b.WriteString("\n")

	return b.String()
}

// renderField renders one labelled record field.
func (v *View) renderField(label, value string) string {
	return v.styles.FieldLabel.Render(fmt.Sprintf("%-12s", label)) +
		v.styles.Normal.Render(value) + "\n"
}

// SetDimensions updates the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// PatientID returns the selected patient identifier.
func (v *View) PatientID() int {
	return v.patientID
}

// Patient returns the loaded record, or nil.
func (v *View) Patient() *domain.Patient {
	return v.patient
}

// Loading returns whether the view is loading.
func (v *View) Loading() bool {
	return v.loading
}

// Error returns the current error, if any.
func (v *View) Error() error {
	return v.err
}
