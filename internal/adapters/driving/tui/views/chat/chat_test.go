package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/messages"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/styles"
	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

// MockAssistantService implements driving.AssistantService for testing.
type MockAssistantService struct {
	SendFunc func(ctx context.Context, input string, chatCtx domain.ChatContext) ([]domain.Message, error)

	transcript []domain.Message
	state      domain.ChatState
	resets     int
}

func (m *MockAssistantService) Send(ctx context.Context, input string, chatCtx domain.ChatContext) ([]domain.Message, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, input, chatCtx)
	}
	return nil, nil
}

func (m *MockAssistantService) Transcript() []domain.Message {
	return m.transcript
}

func (m *MockAssistantService) State() domain.ChatState {
	if m.state == "" {
		return domain.ChatIdle
	}
	return m.state
}

func (m *MockAssistantService) Reset() {
	m.resets++
	m.transcript = []domain.Message{{ID: 1, Role: domain.RoleAssistant, Content: "Hello!"}}
}

func (m *MockAssistantService) SessionID() string {
	return "session-1"
}

func typeText(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

func TestInit_CopiesTranscript(t *testing.T) {
	mock := &MockAssistantService{
		transcript: []domain.Message{{ID: 1, Role: domain.RoleAssistant, Content: "Hello!"}},
	}
	view := NewView(styles.DefaultStyles(), mock)

	view.Init()

	require.Len(t, view.Transcript(), 1)
	assert.Contains(t, view.View(), "Hello!")
}

func TestSend_DispatchesTurn(t *testing.T) {
	var gotInput string
	var gotCtx domain.ChatContext
	mock := &MockAssistantService{
		SendFunc: func(ctx context.Context, input string, chatCtx domain.ChatContext) ([]domain.Message, error) {
			gotInput = input
			gotCtx = chatCtx
			return nil, nil
		},
	}
	view := NewView(styles.DefaultStyles(), mock)
	view.SetChatContext(domain.ChatContext{
		Patients:         []domain.Patient{{ID: 3}},
		CurrentPatientID: 3,
	})
	view = typeText(view, "summarize notes")

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, view.Sending())

	// The batch carries the send command and a spinner tick; running it
	// executes both.
	collectMsgs(cmd())

	assert.Equal(t, "summarize notes", gotInput)
	assert.Equal(t, 3, gotCtx.CurrentPatientID)
	require.Len(t, gotCtx.Patients, 1)
}

// collectMsgs drains a command result, following batches.
func collectMsgs(msg tea.Msg) {
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, cmd := range batch {
			if cmd != nil {
				cmd()
			}
		}
	}
}

func TestSend_EmptyInputIgnored(t *testing.T) {
	called := false
	mock := &MockAssistantService{
		SendFunc: func(ctx context.Context, input string, chatCtx domain.ChatContext) ([]domain.Message, error) {
			called = true
			return nil, nil
		},
	}
	view := NewView(styles.DefaultStyles(), mock)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, called)
}

func TestSend_InFlightTurnBlocksInput(t *testing.T) {
	mock := &MockAssistantService{}
	view := NewView(styles.DefaultStyles(), mock)
	view = typeText(view, "first question")
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, view.Sending())

	// Keystrokes are dropped while the turn runs.
	view = typeText(view, "second")
	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestAssistantReplied_RefreshesTranscript(t *testing.T) {
	mock := &MockAssistantService{}
	view := NewView(styles.DefaultStyles(), mock)
	view = typeText(view, "hello")
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	mock.transcript = []domain.Message{
		{ID: 1, Role: domain.RoleUser, Content: "hello"},
		{ID: 2, Role: domain.RoleAssistant, Content: "Hi there"},
	}
	view, _ = view.Update(messages.AssistantReplied{})

	assert.False(t, view.Sending())
	assert.Len(t, view.Transcript(), 2)
	assert.Contains(t, view.View(), "Hi there")
}

func TestAssistantReplied_Error(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockAssistantService{})

	view, _ = view.Update(messages.AssistantReplied{Err: errors.New("turn already in progress")})

	require.Error(t, view.Error())
	assert.Contains(t, view.View(), "turn already in progress")
}

func TestResetSession(t *testing.T) {
	mock := &MockAssistantService{
		transcript: []domain.Message{
			{ID: 1, Role: domain.RoleUser, Content: "old question"},
		},
	}
	view := NewView(styles.DefaultStyles(), mock)
	view.Init()

	view.ResetSession()

	assert.Equal(t, 1, mock.resets)
	require.Len(t, view.Transcript(), 1)
	assert.Equal(t, "Hello!", view.Transcript()[0].Content)
}

func TestEsc_ReturnsToConfiguredView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockAssistantService{})
	view.SetReturnView(messages.ViewPatientDetail)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewPatientDetail, changed.View)
}

func TestView_AssistantUnavailable(t *testing.T) {
	view := NewView(styles.DefaultStyles(), nil)

	assert.Contains(t, view.View(), "Assistant is not configured")
}
