// Package patientform implements the create/edit patient form view.
package patientform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/messages"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/styles"
	"github.com/medboard-labs/medboard-cli/internal/core/domain"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driving"
)

// Field indices, in display order.
const (
	fieldFirstName = iota
	fieldLastName
	fieldAge
	fieldGender
	fieldPhone
	fieldEmail
	fieldLastVisit
	fieldCount
)

// fieldNames maps input indices to the validation keys the domain layer
// uses, so per-field messages land under the right input.
var fieldNames = [fieldCount]string{
	"firstName", "lastName", "age", "gender", "phone", "email", "lastVisitDate",
}

var fieldLabels = [fieldCount]string{
	"First name", "Last name", "Age", "Gender", "Phone", "Email", "Last visit (YYYY-MM-DD)",
}

// View is the patient create/edit form.
type View struct {
	styles         *styles.Styles
	patientService driving.PatientService
	ctx            context.Context

	inputs  [fieldCount]textinput.Model
	focused int

	// editing is the record being updated, or nil in create mode.
	editing *domain.Patient

	fieldErrs  domain.FieldErrors
	submitting bool
	err        error

	width  int
	height int
}

// NewView creates a new patient form view in create mode.
func NewView(s *styles.Styles, patientService driving.PatientService) *View {
	v := &View{
		styles:         s,
		patientService: patientService,
		ctx:            context.Background(),
	}
	for i := range v.inputs {
		ti := textinput.New()
		ti.CharLimit = 128
		ti.Width = 40
		ti.Placeholder = fieldLabels[i]
		v.inputs[i] = ti
	}
	v.inputs[fieldFirstName].Focus()
	return v
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	if ctx != nil {
		v.ctx = ctx
	}
}

// SetPatient switches the form into edit mode pre-filled with the record,
// or back to a blank create form when patient is nil.
func (v *View) SetPatient(patient *domain.Patient) {
	v.editing = patient
	v.fieldErrs = nil
	v.err = nil
	v.submitting = false

	for i := range v.inputs {
		v.inputs[i].Reset()
		v.inputs[i].Blur()
	}
	if patient != nil {
		v.inputs[fieldFirstName].SetValue(patient.FirstName)
		v.inputs[fieldLastName].SetValue(patient.LastName)
		v.inputs[fieldAge].SetValue(strconv.Itoa(patient.Age))
		v.inputs[fieldGender].SetValue(patient.Gender)
		v.inputs[fieldPhone].SetValue(patient.Phone)
		v.inputs[fieldEmail].SetValue(patient.Email)
		if patient.LastVisitDate != nil && !patient.LastVisitDate.IsZero() {
			v.inputs[fieldLastVisit].SetValue(patient.LastVisitDate.Format("2006-01-02"))
		}
	}
	v.focused = fieldFirstName
	v.inputs[v.focused].Focus()
}

// Init initialises the form.
func (v *View) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the form view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.PatientSaved:
		v.submitting = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if !msg.Fields.Ok() {
			v.fieldErrs = msg.Fields
			return v, nil
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.submitting {
		return v, nil
	}

	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewPatients}
		}

	case "tab", "down":
		v.focusField((v.focused + 1) % fieldCount)
		return v, nil

	case "shift+tab", "up":
		v.focusField((v.focused + fieldCount - 1) % fieldCount)
		return v, nil

	case "enter":
		if v.focused == fieldLastVisit {
			return v, v.submit()
		}
		v.focusField(v.focused + 1)
		return v, nil

	case "ctrl+s":
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.inputs[v.focused], cmd = v.inputs[v.focused].Update(msg)
	return v, cmd
}

// focusField moves focus to the given input.
func (v *View) focusField(i int) {
	v.inputs[v.focused].Blur()
	v.focused = i
	v.inputs[v.focused].Focus()
}

// submit validates and saves the form.
func (v *View) submit() tea.Cmd {
	v.submitting = true
	v.err = nil
	v.fieldErrs = nil

	age, ageErr := strconv.Atoi(strings.TrimSpace(v.inputs[fieldAge].Value()))
	if ageErr != nil {
		v.submitting = false
		v.fieldErrs = domain.FieldErrors{"age": "age must be a number"}
		return nil
	}

	payload := domain.CreatePatientPayload{
		FirstName:     strings.TrimSpace(v.inputs[fieldFirstName].Value()),
		LastName:      strings.TrimSpace(v.inputs[fieldLastName].Value()),
		Age:           age,
		Gender:        strings.TrimSpace(v.inputs[fieldGender].Value()),
		Phone:         strings.TrimSpace(v.inputs[fieldPhone].Value()),
		Email:         strings.TrimSpace(v.inputs[fieldEmail].Value()),
		LastVisitDate: strings.TrimSpace(v.inputs[fieldLastVisit].Value()),
	}

	if v.editing == nil {
		return func() tea.Msg {
			patient, fields, err := v.patientService.Create(v.ctx, payload)
			return messages.PatientSaved{Patient: patient, Fields: fields, Err: err}
		}
	}

	id := v.editing.ID
	update := domain.UpdatePatientPayload{
		FirstName: &payload.FirstName,
		LastName:  &payload.LastName,
		Age:       &payload.Age,
		Gender:    &payload.Gender,
		Phone:     &payload.Phone,
		Email:     &payload.Email,
	}
	if payload.LastVisitDate != "" {
		update.LastVisitDate = &payload.LastVisitDate
	}
	return func() tea.Msg {
		patient, fields, err := v.patientService.Update(v.ctx, id, update)
		return messages.PatientSaved{Patient: patient, Fields: fields, Err: err}
	}
}

// View renders the form.
func (v *View) View() string {
	var b strings.Builder

	title := "New Patient"
	if v.editing != nil {
		title = fmt.Sprintf("Edit Patient: %s", v.editing.FullName())
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	for i := range v.inputs {
		b.WriteString(v.styles.FieldLabel.Render(fmt.Sprintf("%-24s", fieldLabels[i])))
		b.WriteString(v.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := v.fieldErrs[fieldNames[i]]; ok {
			b.WriteString(v.styles.Error.Render("  " + msg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if v.submitting {
		b.WriteString(v.styles.Muted.Render("Saving..."))
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[tab] next field  [ctrl+s] save  [esc] cancel"))
	b.WriteString("\n")

	return b.String()
}

// SetDimensions updates the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Editing returns the record being edited, or nil in create mode.
func (v *View) Editing() *domain.Patient {
	return v.editing
}

// Focused returns the focused field index.
func (v *View) Focused() int {
	return v.focused
}

// FieldErrors returns the current validation messages.
func (v *View) FieldErrors() domain.FieldErrors {
	return v.fieldErrs
}

// Submitting reports whether a save is in flight.
func (v *View) Submitting() bool {
	return v.submitting
}

// Error returns the current error, if any.
func (v *View) Error() error {
	return v.err
}

// Value returns the current text of the given field index. Used in tests.
func (v *View) Value(i int) string {
	return v.inputs[i].Value()
}
