package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driven"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driving"
	"github.com/medboard-labs/medboard-cli/internal/logger"
)

// Ensure AssistantEngine implements the interface.
var _ driving.AssistantService = (*AssistantEngine)(nil)

// generalChatHistoryTurns is how many trailing transcript turns accompany a
// general-chat completion request.
const generalChatHistoryTurns = 5

// intentClassifier is the classification step of a dispatch turn. Satisfied
// by *Classifier; tests substitute a canned implementation.
type intentClassifier interface {
	Classify(ctx context.Context, userMessage string) domain.IntentResult
}

// AssistantEngine is the conversational dispatch engine. Per user turn it
// appends the user message, classifies it, routes to the matching handler,
// and appends the handler's assistant messages. At most one turn is in
// flight at a time; a second submission is rejected, not queued.
//
// The transcript is append-only with one exception: the summarize handler
// appends a placeholder message and later replaces its content in place
// with the finished summary.
type AssistantEngine struct {
	classifier intentClassifier
	completion driven.CompletionService
	patients   driving.PatientService

	mu        sync.Mutex
	sessionID string
	state     domain.ChatState
	messages  []domain.Message
	nextID    int64

	// now is swapped out by tests.
	now func() time.Time
}

// NewAssistantEngine creates a new dispatch engine with a fresh session and
// a greeted transcript.
func NewAssistantEngine(classifier intentClassifier, completion driven.CompletionService, patients driving.PatientService) *AssistantEngine {
	e := &AssistantEngine{
		classifier: classifier,
		completion: completion,
		patients:   patients,
		now:        time.Now,
	}
	e.Reset()
	return e
}

// Reset clears the transcript back to the greeting and starts a fresh
// session. Invoked on navigation between views.
func (e *AssistantEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionID = uuid.NewString()
	e.state = domain.ChatIdle
	e.messages = nil
	e.nextID = 0
	e.appendLocked(domain.RoleAssistant, greetingMessage)
}

// SessionID identifies the current conversation session.
func (e *AssistantEngine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// State reports the engine's phase.
func (e *AssistantEngine) State() domain.ChatState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Transcript returns a copy of the session's messages in order.
func (e *AssistantEngine) Transcript() []domain.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Send runs one dispatch turn. It returns the assistant messages appended
// during the turn. Only empty input and an in-flight turn are reported as
// errors; handler failures become transcript messages.
func (e *AssistantEngine) Send(ctx context.Context, input string, chatCtx domain.ChatContext) ([]domain.Message, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, domain.ErrEmptyInput
	}

	e.mu.Lock()
	if e.state != domain.ChatIdle {
		e.mu.Unlock()
		return nil, domain.ErrTurnInFlight
	}
	e.state = domain.ChatClassifying
	e.appendLocked(domain.RoleUser, trimmed)
	replyStart := len(e.messages)
	e.mu.Unlock()

	defer e.setState(domain.ChatIdle)

	result := e.classifier.Classify(ctx, trimmed)
	e.setState(domain.ChatHandling)

	switch result.Intent {
	case domain.IntentAddNote:
		e.handleAddNote(ctx, result, trimmed, chatCtx)
	case domain.IntentSummarizeNotes:
		e.handleSummarizeNotes(ctx, chatCtx)
	case domain.IntentFilterPatients:
		e.handleFilterPatients(result, chatCtx)
	default:
		e.handleGeneralChat(ctx, trimmed, replyStart)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Message, len(e.messages)-replyStart)
	copy(out, e.messages[replyStart:])
	return out, nil
}

// addNotePattern matches "add note: <content>" with an optional trailing
// "for [user|patient] id: <n>" clause. Separator punctuation before the
// clause is consumed so it never leaks into the captured content.
var addNotePattern = regexp.MustCompile(`(?i)add note:?\s*(.+?)(?:[,;\s]+for\s+(?:user|patient)?\s*id:?\s*(\d+))?\s*$`)

// parseAddNoteText is the fallback extraction applied to the raw user text
// when the classifier returned no structured note content.
func parseAddNoteText(raw string) (content string, patientID int) {
	m := addNotePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", 0
	}
	content = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[1]), ",;"))
	if m[2] != "" {
		patientID, _ = strconv.Atoi(m[2])
	}
	return content, patientID
}

func (e *AssistantEngine) handleAddNote(ctx context.Context, result domain.IntentResult, raw string, chatCtx domain.ChatContext) {
	var content string
	var structuredID int
	if result.AddNote != nil {
		content = strings.TrimSpace(result.AddNote.NoteContent)
		structuredID = result.AddNote.PatientID
	}

	var parsedID int
	if content == "" {
		content, parsedID = parseAddNoteText(raw)
	}
	if content == "" {
		e.appendAssistant(msgNoteContentMissing)
		return
	}

	target := structuredID
	if target == 0 {
		target = parsedID
	}
	if target == 0 {
		target = chatCtx.CurrentPatientID
	}
	if target == 0 {
		e.appendAssistant(msgNoteTargetMissing)
		return
	}

	if _, err := e.patients.AddNote(ctx, target, domain.AddNotePayload{Content: content}); err != nil {
		logger.Warn("assistant: add note to %d failed: %v", target, err)
		e.appendAssistant(fmt.Sprintf("❌ Failed to add note. Please check that patient #%d exists.", target))
		return
	}

	// Name the patient when the caller's loaded collection knows it.
	patientInfo := fmt.Sprintf(" to patient #%d", target)
	if target == chatCtx.CurrentPatientID {
		patientInfo = ""
	}
	for _, p := range chatCtx.Patients {
		if p.ID == target {
			patientInfo = " to " + p.FullName()
			break
		}
	}

	e.appendAssistant(fmt.Sprintf("✅ Note added successfully%s: %q", patientInfo, content))
}

func (e *AssistantEngine) handleSummarizeNotes(ctx context.Context, chatCtx domain.ChatContext) {
	if chatCtx.CurrentPatientID == 0 {
		e.appendAssistant(msgSummaryNeedsPatient)
		return
	}

	// Authoritative record, not the cache: the summary must cover notes
	// added since the view was loaded.
	patient, err := e.patients.GetFresh(ctx, chatCtx.CurrentPatientID)
	if err != nil {
		logger.Warn("assistant: fetch patient %d for summary failed: %v", chatCtx.CurrentPatientID, err)
		e.appendAssistant(msgSummaryFailed)
		return
	}
	if len(patient.Notes) == 0 {
		e.appendAssistant(msgNoNotesToSummarize)
		return
	}

	placeholderID := e.appendAssistant(msgSummaryPlaceholder)

	lines := make([]string, len(patient.Notes))
	for i, note := range patient.Notes {
		lines[i] = fmt.Sprintf("%d. [%s] %s", i+1, note.CreatedAt.Format("Jan 2, 2006"), note.Content)
	}

	summary, err := e.completion.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: "Please summarize these patient notes:\n\n" + strings.Join(lines, "\n")},
	})
	if err != nil {
		// The placeholder stays as-is; the failure is appended after it.
		logger.Warn("assistant: summary completion failed: %v", err)
		e.appendAssistant(msgSummaryFailed)
		return
	}

	e.replaceContent(placeholderID, summaryHeading+summary)
}

func (e *AssistantEngine) handleFilterPatients(result domain.IntentResult, chatCtx domain.ChatContext) {
	var criteria string
	timeframe := domain.TimeframeNone
	if result.Filter != nil {
		criteria = result.Filter.Criteria
		timeframe = result.Filter.Timeframe
	}

	if len(chatCtx.Patients) == 0 {
		e.appendAssistant(msgNoPatientsToFilter)
		return
	}

	filtered := domain.FilterByTimeframe(chatCtx.Patients, timeframe, e.now())
	if len(filtered) == 0 {
		e.appendAssistant(fmt.Sprintf("No patients found matching %q.", criteria))
		return
	}

	lines := make([]string, len(filtered))
	for i, p := range filtered {
		lines[i] = fmt.Sprintf("• %s - Last visit: %s", p.FullName(), p.FormatLastVisit())
	}
	e.appendAssistant(fmt.Sprintf("Found %d patient(s):\n\n%s", len(filtered), strings.Join(lines, "\n")))
}

// handleGeneralChat forwards the message with recent conversation history.
// replyStart is the transcript index one past the user message of this
// turn; history is taken from before it.
func (e *AssistantEngine) handleGeneralChat(ctx context.Context, raw string, replyStart int) {
	e.mu.Lock()
	prior := e.messages[:replyStart-1]
	if len(prior) > generalChatHistoryTurns {
		prior = prior[len(prior)-generalChatHistoryTurns:]
	}
	messages := make([]driven.ChatMessage, 0, len(prior)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: generalChatSystemPrompt})
	for _, m := range prior {
		messages = append(messages, driven.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	e.mu.Unlock()
	messages = append(messages, driven.ChatMessage{Role: "user", Content: raw})

	reply, err := e.completion.Chat(ctx, messages)
	if err != nil {
		logger.Warn("assistant: general chat failed: %v", err)
		e.appendAssistant(apologyGeneric)
		return
	}
	e.appendAssistant(reply)
}

func (e *AssistantEngine) setState(state domain.ChatState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

// appendLocked appends a message. Caller must hold mu.
func (e *AssistantEngine) appendLocked(role domain.Role, content string) int64 {
	e.nextID++
	e.messages = append(e.messages, domain.Message{
		ID:        e.nextID,
		Role:      role,
		Content:   content,
		CreatedAt: e.now(),
	})
	return e.nextID
}

func (e *AssistantEngine) appendAssistant(content string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.appendLocked(domain.RoleAssistant, content)
}

// replaceContent swaps the content of an existing message in place.
func (e *AssistantEngine) replaceContent(id int64, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.messages {
		if e.messages[i].ID == id {
			e.messages[i].Content = content
			return
		}
	}
}
