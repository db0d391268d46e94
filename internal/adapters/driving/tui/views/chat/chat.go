// Package chat implements the AI assistant conversation view.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/components/input"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/messages"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/styles"
	"github.com/medboard-labs/medboard-cli/internal/core/domain"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driving"
)

// View is the assistant conversation view. The transcript is owned by the
// assistant engine; this view renders a copy and feeds user turns in.
type View struct {
	styles    *styles.Styles
	assistant driving.AssistantService
	ctx       context.Context

	input      *input.ChatInput
	spinner    spinner.Model
	viewport   viewport.Model
	transcript []domain.Message
	chatCtx    domain.ChatContext
	returnView messages.ViewType
	sending    bool
	err        error

	width  int
	height int
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, assistant driving.AssistantService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	return &View{
		styles:     s,
		assistant:  assistant,
		ctx:        context.Background(),
		input:      input.NewChatInput(s),
		spinner:    sp,
		viewport:   viewport.New(80, 16),
		returnView: messages.ViewPatients,
	}
}

// SetContext sets the context used for service calls.
func (v *View) SetContext(ctx context.Context) {
	if ctx != nil {
		v.ctx = ctx
	}
}

// SetChatContext supplies the caller's loaded collection and open patient
// so the assistant can resolve references like "this patient".
func (v *View) SetChatContext(chatCtx domain.ChatContext) {
	v.chatCtx = chatCtx
}

// SetReturnView sets where esc navigates back to.
func (v *View) SetReturnView(view messages.ViewType) {
	v.returnView = view
}

// ResetSession clears the conversation back to the greeting. Called when
// the user navigates to a different record.
func (v *View) ResetSession() {
	if v.assistant == nil {
		return
	}
	v.assistant.Reset()
	v.syncTranscript()
	v.sending = false
	v.err = nil
	v.input.Reset()
	v.input.SetEnabled(true)
}

// syncTranscript re-renders the engine's transcript into the viewport and
// scrolls to the newest message.
func (v *View) syncTranscript() {
	v.transcript = v.assistant.Transcript()

	var b strings.Builder
	for _, m := range v.transcript {
		b.WriteString(v.renderMessage(m))
		b.WriteString("\n\n")
	}
	v.viewport.SetContent(b.String())
	v.viewport.GotoBottom()
}

// Init initialises the chat view.
func (v *View) Init() tea.Cmd {
	if v.assistant != nil {
		v.syncTranscript()
	}
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.AssistantReplied:
		v.sending = false
		v.input.SetEnabled(true)
		v.syncTranscript()
		if msg.Err != nil && !errors.Is(msg.Err, domain.ErrEmptyInput) {
			v.err = msg.Err
		}
		return v, nil

	case spinner.TickMsg:
		if !v.sending {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg handles keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		returnView := v.returnView
		return v, func() tea.Msg {
			return messages.ViewChanged{View: returnView}
		}

	case "enter":
		return v, v.send()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// send dispatches the typed message as one assistant turn.
func (v *View) send() tea.Cmd {
	if v.assistant == nil || v.sending {
		return nil
	}
	text := strings.TrimSpace(v.input.Value())
	if text == "" {
		return nil
	}

	v.sending = true
	v.err = nil
	v.input.Reset()
	v.input.SetEnabled(false)

	chatCtx := v.chatCtx
	sendCmd := func() tea.Msg {
		_, err := v.assistant.Send(v.ctx, text, chatCtx)
		return messages.AssistantReplied{Err: err}
	}
	return tea.Batch(sendCmd, v.spinner.Tick)
}

// View renders the conversation.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("AI Assistant"))
	b.WriteString("\n\n")

	if v.assistant == nil {
		b.WriteString(v.styles.Muted.Render("Assistant is not configured. Set an AI API key to enable it."))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(v.viewport.View())
	b.WriteString("\n\n")

	if v.sending {
		b.WriteString(v.spinner.View())
		b.WriteString(v.styles.Muted.Render(" thinking..."))
		b.WriteString("\n\n")
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[enter] send  [esc] back"))
	b.WriteString("\n")

	return b.String()
}

// renderMessage renders one conversation turn.
func (v *View) renderMessage(m domain.Message) string {
	if m.Role == domain.RoleUser {
		return v.styles.ChatUser.Render("You: ") + v.styles.Normal.Render(m.Content)
	}
	return v.styles.ChatAssistant.Render("Assistant: " + m.Content)
}

// SetDimensions updates the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)

	v.viewport.Width = width
	// Leave room for the title, input and help lines.
	transcriptHeight := height - 8
	if transcriptHeight < 4 {
		transcriptHeight = 4
	}
	v.viewport.Height = transcriptHeight
}

// Transcript returns the rendered transcript copy.
func (v *View) Transcript() []domain.Message {
	return v.transcript
}

// Sending reports whether a turn is in flight.
func (v *View) Sending() bool {
	return v.sending
}

// Error returns the current error, if any.
func (v *View) Error() error {
	return v.err
}
