package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/components/status"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/keymap"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/messages"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/styles"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/views/chat"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/views/patientdetail"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/views/patientform"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/views/patients"
	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

// App is the root Bubbletea model. It routes messages to the active view
// and owns cross-view concerns: navigation, the status bar, and the chat
// session lifecycle.
type App struct {
	ports  *Ports
	styles *styles.Styles
	keymap *keymap.KeyMap
	ctx    context.Context

	currentView messages.ViewType
	prevView    messages.ViewType

	patientsView *patients.View
	detailView   *patientdetail.View
	formView     *patientform.View
	chatView     *chat.View
	statusBar    *status.Bar

	// route identifies the record the user is looking at. The assistant
	// session is reset whenever it changes, matching the dashboard's
	// per-page conversations.
	route string

	width  int
	height int
	err    error
}

// NewApp creates the root model from the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, ErrInvalidPorts
	}
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		styles:       s,
		keymap:       km,
		ctx:          context.Background(),
		currentView:  messages.ViewPatients,
		prevView:     messages.ViewPatients,
		patientsView: patients.NewView(s, ports.Patients),
		detailView:   patientdetail.NewView(s, ports.Patients),
		formView:     patientform.NewView(s, ports.Patients),
		chatView:     chat.NewView(s, ports.Assistant),
		statusBar:    status.NewBar(s, km),
		route:        "patients",
		width:        80,
		height:       24,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx == nil {
		return a
	}
	a.ctx = ctx
	a.patientsView.SetContext(ctx)
	a.detailView.SetContext(ctx)
	a.formView.SetContext(ctx)
	a.chatView.SetContext(ctx)
	return a
}

// Init starts the application on the patient list.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("medboard"),
		a.patientsView.Init(),
	)
}

// Update routes messages through the Elm loop.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.patientsView.SetDimensions(msg.Width, msg.Height-1)
		a.detailView.SetDimensions(msg.Width, msg.Height-1)
		a.formView.SetDimensions(msg.Width, msg.Height-1)
		a.chatView.SetDimensions(msg.Width, msg.Height-1)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		return a, a.setView(msg.View)

	case messages.PatientSelected:
		a.detailView.SetPatientID(msg.ID)
		a.setRoute(fmt.Sprintf("patient:%d", msg.ID))
		a.currentView = messages.ViewPatientDetail
		return a, a.detailView.Init()

	case messages.EditPatient:
		a.formView.SetPatient(msg.Patient)
		a.currentView = messages.ViewPatientForm
		return a, a.formView.Init()

	case messages.PatientSaved:
		a.formView, _ = a.formView.Update(msg)
		if msg.Err == nil && msg.Fields.Ok() && msg.Patient != nil {
			return a, a.setView(messages.ViewPatients)
		}
		return a, nil

	case messages.PatientDeleted:
		if a.currentView == messages.ViewPatientDetail && msg.Err == nil {
			return a, a.setView(messages.ViewPatients)
		}
		return a, a.routeToCurrent(msg)

	case messages.PatientsLoaded:
		if msg.Err == nil {
			a.statusBar.SetPatientCount(len(msg.Patients))
			a.statusBar.SetState(status.StateReady)
		} else {
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		}
		return a, a.routeToCurrent(msg)

	case messages.AssistantReplied:
		a.statusBar.SetState(status.StateReady)
		return a, a.routeToCurrent(msg)

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.routeToCurrent(msg)
}

// handleKeyMsg handles global keys, then delegates to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Forms and the chat input own the keyboard while active.
	typing := a.currentView == messages.ViewPatientForm || a.currentView == messages.ViewChat

	if !typing {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "?":
			if a.currentView != messages.ViewHelp {
				a.prevView = a.currentView
				a.currentView = messages.ViewHelp
				a.statusBar.SetState(status.StateHelp)
			}
			return a, nil
		case "a":
			return a, a.openChat()
		}
	}

	if a.currentView == messages.ViewHelp {
		if msg.String() == "esc" {
			a.statusBar.SetState(status.StateReady)
			a.currentView = a.prevView
		}
		return a, nil
	}

	return a, a.routeToCurrent(msg)
}

// openChat shows the assistant seeded with the active view's context.
func (a *App) openChat() tea.Cmd {
	chatCtx := domain.ChatContext{Patients: a.patientsView.Patients()}
	returnView := messages.ViewPatients
	if a.currentView == messages.ViewPatientDetail {
		chatCtx.CurrentPatientID = a.detailView.PatientID()
		returnView = messages.ViewPatientDetail
	}
	a.chatView.SetChatContext(chatCtx)
	a.chatView.SetReturnView(returnView)
	a.currentView = messages.ViewChat
	return a.chatView.Init()
}

// setView navigates to a view and initialises it.
func (a *App) setView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewPatients:
		a.setRoute("patients")
		return a.patientsView.Init()
	case messages.ViewPatientDetail:
		return a.detailView.Init()
	case messages.ViewPatientForm:
		return a.formView.Init()
	case messages.ViewChat:
		return a.openChat()
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	}
	return nil
}

// setRoute records the active record and resets the assistant session
// when it changes.
func (a *App) setRoute(route string) {
	if route == a.route {
		return
	}
	a.route = route
	a.chatView.ResetSession()
}

// routeToCurrent forwards a message to the active view.
func (a *App) routeToCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewPatients:
		a.patientsView, cmd = a.patientsView.Update(msg)
	case messages.ViewPatientDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewPatientForm:
		a.formView, cmd = a.formView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	}
	return cmd
}

// View renders the active view with the status bar underneath.
func (a *App) View() string {
	var b strings.Builder

	switch a.currentView {
	case messages.ViewPatients:
		b.WriteString(a.patientsView.View())
	case messages.ViewPatientDetail:
		b.WriteString(a.detailView.View())
	case messages.ViewPatientForm:
		b.WriteString(a.formView.View())
	case messages.ViewChat:
		b.WriteString(a.chatView.View())
	case messages.ViewHelp:
		b.WriteString(a.renderHelp())
	}

	b.WriteString("\n")
	b.WriteString(a.statusBar.View())

	return b.String()
}

// renderHelp renders the full keybinding reference.
func (a *App) renderHelp() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Keybindings"))
	b.WriteString("\n\n")

	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(a.styles.Subtitle.Render(fmt.Sprintf("  %-10s", h.Key)))
			b.WriteString(a.styles.Normal.Render(h.Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Help.Render("[esc] back"))
	b.WriteString("\n")

	return b.String()
}

// CurrentView returns the active view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Width returns the current terminal width.
func (a *App) Width() int {
	return a.width
}

// Height returns the current terminal height.
func (a *App) Height() int {
	return a.height
}

// Error returns the last application-level error, if any.
func (a *App) Error() error {
	return a.err
}
