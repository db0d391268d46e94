// Package patients implements the paginated patient list view.
package patients

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

// pageSize is the number of patient rows shown per page.
const pageSize = 9

// View is the patient list view.
type View struct {
	styles         *styles.Styles
	patientService driving.PatientService
	ctx            context.Context

	patients []domain.Patient
	selected int
	page     int
	loading  bool
	err      error

	width  int
	height int
}

// NewView creates a new patient list view.
func NewView(s *styles.Styles, patientService driving.PatientService) *View {
	return &View{
		styles:         s,
		patientService: patientService,
		ctx:            context.Background(),
		patients:       []domain.Patient{},
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	if ctx != nil {
		v.ctx = ctx
	}
}

// Init loads the patient collection.
func (v *View) Init() tea.Cmd {
	return v.loadPatients()
}

// loadPatients returns a command that fetches the patient collection.
func (v *View) loadPatients() tea.Cmd {
	v.loading = true
	v.err = nil
	return func() tea.Msg {
		if v.patientService == nil {
			return messages.PatientsLoaded{Patients: []domain.Patient{}}
		}
		patients, err := v.patientService.List(v.ctx)
		return messages.PatientsLoaded{Patients: patients, Err: err}
	}
}

// Update handles messages for the patient list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.PatientsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.patients = msg.Patients
		v.clampCursor()
		return v, nil

	case messages.PatientDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.loadPatients()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			if v.selected < v.page*pageSize {
				v.page--
			}
		}

	case "down", "j":
		if v.selected < len(v.patients)-1 {
			v.selected++
			if v.selected >= (v.page+1)*pageSize {
				v.page++
			}
		}

	case "left", "h":
		if v.page > 0 {
			v.page--
			v.selected = v.page * pageSize
		}

	case "right", "l":
		if v.page < v.pageCount()-1 {
			v.page++
			v.selected = v.page * pageSize
		}

	case "enter":
		if len(v.patients) > 0 {
			id := v.patients[v.selected].ID
			return v, func() tea.Msg {
				return messages.PatientSelected{ID: id}
			}
		}

	case "n":
		return v, func() tea.Msg {
			return messages.EditPatient{Patient: nil}
		}

	case "e":
		if len(v.patients) > 0 {
			patient := v.patients[v.selected]
			return v, func() tea.Msg {
				return messages.EditPatient{Patient: &patient}
			}
		}

	case "d":
		if len(v.patients) > 0 {
			return v, v.deletePatient(v.patients[v.selected].ID)
		}

	case "r":
		return v, v.loadPatients()
	}

	return v, nil
}

// deletePatient returns a command that removes a patient.
func (v *View) deletePatient(id int) tea.Cmd {
	return func() tea.Msg {
		err := v.patientService.Delete(v.ctx, id)
		return messages.PatientDeleted{ID: id, Err: err}
	}
}

// View renders the patient list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Patients"))
	b.WriteString("\n")
	if !v.loading && v.err == nil {
		b.WriteString(v.renderStats())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading patients..."))
		b.WriteString("\n")
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[r] retry  [q] quit"))
		b.WriteString("\n")
		return b.String()
	}

	if len(v.patients) == 0 {
		b.WriteString(v.styles.Muted.Render("No patients on record."))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[n] new patient  [q] quit"))
		b.WriteString("\n")
		return b.String()
	}

	start := v.page * pageSize
	end := start + pageSize
	if end > len(v.patients) {
		end = len(v.patients)
	}

	for i := start; i < end; i++ {
		b.WriteString(v.renderPatient(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf(
		"Page %d of %d  (%d patients)", v.page+1, v.pageCount(), len(v.patients),
	)))
	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	b.WriteString("\n")

	return b.String()
}

// renderStats renders the roster summary line.
func (v *View) renderStats() string {
	visited := 0
	for _, p := range v.patients {
		if p.LastVisitDate != nil && !p.LastVisitDate.IsZero() {
			visited++
		}
	}
	return v.styles.Muted.Render(fmt.Sprintf(
		"%d total · %d with a recorded visit", len(v.patients), visited,
	))
}

// renderPatient renders a single patient row.
func (v *View) renderPatient(i int) string {
	p := v.patients[i]

	indicator := "  "
	style := v.styles.Normal
	if i == v.selected {
		indicator = "> "
		style = v.styles.Selected
	}

	row := fmt.Sprintf("%s, age %d", p.FullName(), p.Age)
	visit := v.styles.Muted.Render(fmt.Sprintf("  Last visit: %s", p.FormatLastVisit()))

	return indicator + style.Render(row) + visit
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render(
		"[enter] details  [n] new  [e] edit  [d] delete  [←/→] page  [a] assistant  [r] reload  [q] quit",
	)
}

// pageCount returns the number of pages.
func (v *View) pageCount() int {
	if len(v.patients) == 0 {
		return 1
	}
	return (len(v.patients) + pageSize - 1) / pageSize
}

// clampCursor keeps the cursor and page inside the collection after a
// reload shrinks it.
func (v *View) clampCursor() {
	if v.selected >= len(v.patients) {
		v.selected = len(v.patients) - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
	v.page = v.selected / pageSize
}

// SetDimensions updates the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Patients returns the loaded collection.
func (v *View) Patients() []domain.Patient {
	return v.patients
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// Page returns the current page index.
func (v *View) Page() int {
	return v.page
}

// Loading returns whether the view is loading.
func (v *View) Loading() bool {
	return v.loading
}

// Error returns the current error, if any.
func (v *View) Error() error {
	return v.err
}
