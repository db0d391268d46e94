// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/tui/styles"
)

// ChatInput wraps a bubbles textinput for the assistant conversation.
// It is disabled while a dispatch turn is in flight.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	enabled   bool
	width     int
}

// NewChatInput creates a new chat input component.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your patients..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50

	return &ChatInput{
		textinput: ti,
		styles:    s,
		enabled:   true,
		width:     50,
	}
}

// Init initialises the chat input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages. Keystrokes are dropped while disabled.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	if !c.enabled {
		if _, ok := msg.(tea.KeyMsg); ok {
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the chat input.
func (c *ChatInput) View() string {
	label := c.styles.Title.Render("You: ")
	field := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// SetEnabled toggles whether keystrokes are accepted.
func (c *ChatInput) SetEnabled(enabled bool) {
	c.enabled = enabled
	if enabled {
		c.textinput.Placeholder = "Ask about your patients..."
	} else {
		c.textinput.Placeholder = "Thinking..."
	}
}

// Enabled reports whether the input accepts keystrokes.
func (c *ChatInput) Enabled() bool {
	return c.enabled
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	// Account for label and padding
	inputWidth := width - 10
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the input.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
}
