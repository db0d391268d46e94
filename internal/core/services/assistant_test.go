package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

// cannedClassifier returns a fixed IntentResult.
type cannedClassifier struct {
	result domain.IntentResult
}

func (c *cannedClassifier) Classify(context.Context, string) domain.IntentResult {
	return c.result
}

// fakePatients is a scriptable driving.PatientService.
type fakePatients struct {
	getFreshFn func(ctx context.Context, id int) (*domain.Patient, error)
	addNoteFn  func(ctx context.Context, id int, payload domain.AddNotePayload) (*domain.Patient, error)

	addNoteCalls  int
	getFreshCalls int
	anyCalls      int
}

func (f *fakePatients) List(context.Context) ([]domain.Patient, error) {
	f.anyCalls++
	return nil, errors.New("unexpected List")
}

func (f *fakePatients) Get(context.Context, int) (*domain.Patient, error) {
	f.anyCalls++
	return nil, errors.New("unexpected Get")
}

func (f *fakePatients) GetFresh(ctx context.Context, id int) (*domain.Patient, error) {
	f.anyCalls++
	f.getFreshCalls++
	if f.getFreshFn == nil {
		return nil, errors.New("unexpected GetFresh")
	}
	return f.getFreshFn(ctx, id)
}

func (f *fakePatients) Create(context.Context, domain.CreatePatientPayload) (*domain.Patient, domain.FieldErrors, error) {
	f.anyCalls++
	return nil, nil, errors.New("unexpected Create")
}

func (f *fakePatients) Update(context.Context, int, domain.UpdatePatientPayload) (*domain.Patient, domain.FieldErrors, error) {
	f.anyCalls++
	return nil, nil, errors.New("unexpected Update")
}

func (f *fakePatients) Delete(context.Context, int) error {
	f.anyCalls++
	return errors.New("unexpected Delete")
}

func (f *fakePatients) AddNote(ctx context.Context, id int, payload domain.AddNotePayload) (*domain.Patient, error) {
	f.anyCalls++
	f.addNoteCalls++
	if f.addNoteFn == nil {
		return nil, errors.New("unexpected AddNote")
	}
	return f.addNoteFn(ctx, id, payload)
}

func intentOf(intent domain.Intent) *cannedClassifier {
	return &cannedClassifier{result: domain.IntentResult{Intent: intent, Confidence: 0.9}}
}

func newEngine(classifier intentClassifier, completion *fakeCompletion, patients *fakePatients) *AssistantEngine {
	if completion == nil {
		completion = &fakeCompletion{reply: "ok"}
	}
	if patients == nil {
		patients = &fakePatients{}
	}
	return NewAssistantEngine(classifier, completion, patients)
}

func TestNewAssistantEngine_StartsGreeted(t *testing.T) {
	engine := newEngine(intentOf(domain.IntentUnknown), nil, nil)

	transcript := engine.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, domain.RoleAssistant, transcript[0].Role)
	assert.Equal(t, greetingMessage, transcript[0].Content)
	assert.Equal(t, domain.ChatIdle, engine.State())
	assert.NotEmpty(t, engine.SessionID())
}

func TestSend_EmptyInput(t *testing.T) {
	engine := newEngine(intentOf(domain.IntentUnknown), nil, nil)

	_, err := engine.Send(context.Background(), "   \n\t", domain.ChatContext{})

	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.Len(t, engine.Transcript(), 1, "nothing should be appended")
}

func TestSend_AppendsUserThenAssistant(t *testing.T) {
	completion := &fakeCompletion{reply: "I can help with patient tasks."}
	engine := newEngine(intentOf(domain.IntentUnknown), completion, nil)

	replies, err := engine.Send(context.Background(), "hello there", domain.ChatContext{})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, "I can help with patient tasks.", replies[0].Content)

	transcript := engine.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, domain.RoleUser, transcript[1].Role)
	assert.Equal(t, "hello there", transcript[1].Content)
	assert.Equal(t, domain.RoleAssistant, transcript[2].Role)
	assert.Equal(t, domain.ChatIdle, engine.State())
}

func TestSend_MessageIDsMonotonic(t *testing.T) {
	engine := newEngine(intentOf(domain.IntentUnknown), nil, nil)

	_, err := engine.Send(context.Background(), "one", domain.ChatContext{})
	require.NoError(t, err)
	_, err = engine.Send(context.Background(), "two", domain.ChatContext{})
	require.NoError(t, err)

	transcript := engine.Transcript()
	for i := 1; i < len(transcript); i++ {
		assert.Greater(t, transcript[i].ID, transcript[i-1].ID)
	}
}

func TestSend_RejectsSecondTurnInFlight(t *testing.T) {
	engine := newEngine(intentOf(domain.IntentUnknown), nil, nil)
	engine.state = domain.ChatHandling

	_, err := engine.Send(context.Background(), "hello", domain.ChatContext{})

	assert.ErrorIs(t, err, domain.ErrTurnInFlight)
}

func TestReset_ClearsTranscriptAndRotatesSession(t *testing.T) {
	engine := newEngine(intentOf(domain.IntentUnknown), nil, nil)
	_, err := engine.Send(context.Background(), "hello", domain.ChatContext{})
	require.NoError(t, err)
	firstSession := engine.SessionID()

	engine.Reset()

	transcript := engine.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, greetingMessage, transcript[0].Content)
	assert.NotEqual(t, firstSession, engine.SessionID())
}

func TestAddNote_StructuredData(t *testing.T) {
	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent: domain.IntentAddNote,
		AddNote: &domain.AddNoteData{
			PatientID:   3,
			NoteContent: "patient reports fever",
		},
	}}
	patients := &fakePatients{
		addNoteFn: func(_ context.Context, id int, p domain.AddNotePayload) (*domain.Patient, error) {
			assert.Equal(t, 3, id)
			assert.Equal(t, "patient reports fever", p.Content)
			return &domain.Patient{ID: id}, nil
		},
	}
	engine := newEngine(classifier, nil, patients)

	chatCtx := domain.ChatContext{Patients: []domain.Patient{{ID: 3, FirstName: "Ada", LastName: "Osei"}}}
	replies, err := engine.Send(context.Background(), "Add note: patient reports fever, for userid: 3", chatCtx)
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, `✅ Note added successfully to Ada Osei: "patient reports fever"`, replies[0].Content)
	assert.Equal(t, 1, patients.addNoteCalls)
}

func TestAddNote_FallbackParseRoundTrip(t *testing.T) {
	// Classifier recognised the intent but extracted nothing structured.
	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent:  domain.IntentAddNote,
		AddNote: &domain.AddNoteData{},
	}}
	var gotID int
	var gotContent string
	patients := &fakePatients{
		addNoteFn: func(_ context.Context, id int, p domain.AddNotePayload) (*domain.Patient, error) {
			gotID, gotContent = id, p.Content
			return &domain.Patient{ID: id}, nil
		},
	}
	engine := newEngine(classifier, nil, patients)

	_, err := engine.Send(context.Background(), "Add note: patient reports fever, for userid: 7", domain.ChatContext{})
	require.NoError(t, err)

	assert.Equal(t, 7, gotID)
	assert.Equal(t, "patient reports fever", gotContent)
}

func TestAddNote_NoContent(t *testing.T) {
	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent:  domain.IntentAddNote,
		AddNote: &domain.AddNoteData{},
	}}
	patients := &fakePatients{}
	engine := newEngine(classifier, nil, patients)

	replies, err := engine.Send(context.Background(), "please add a note", domain.ChatContext{})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, msgNoteContentMissing, replies[0].Content)
	assert.Zero(t, patients.addNoteCalls, "no backend call without content")
}

func TestAddNote_NoTarget(t *testing.T) {
	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent:  domain.IntentAddNote,
		AddNote: &domain.AddNoteData{NoteContent: "dizzy spells"},
	}}
	patients := &fakePatients{}
	engine := newEngine(classifier, nil, patients)

	replies, err := engine.Send(context.Background(), "add note: dizzy spells", domain.ChatContext{})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, msgNoteTargetMissing, replies[0].Content)
	assert.Zero(t, patients.addNoteCalls)
}

func TestAddNote_CurrentPatientFallbackOmitsName(t *testing.T) {
	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent:  domain.IntentAddNote,
		AddNote: &domain.AddNoteData{NoteContent: "follow-up scheduled"},
	}}
	patients := &fakePatients{
		addNoteFn: func(_ context.Context, id int, _ domain.AddNotePayload) (*domain.Patient, error) {
			return &domain.Patient{ID: id}, nil
		},
	}
	engine := newEngine(classifier, nil, patients)

	replies, err := engine.Send(context.Background(), "add note: follow-up scheduled", domain.ChatContext{CurrentPatientID: 5})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, `✅ Note added successfully: "follow-up scheduled"`, replies[0].Content)
}

func TestAddNote_BackendFailure(t *testing.T) {
	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent:  domain.IntentAddNote,
		AddNote: &domain.AddNoteData{PatientID: 42, NoteContent: "x"},
	}}
	patients := &fakePatients{
		addNoteFn: func(context.Context, int, domain.AddNotePayload) (*domain.Patient, error) {
			return nil, errors.New("404")
		},
	}
	engine := newEngine(classifier, nil, patients)

	replies, err := engine.Send(context.Background(), "add note: x for patient id: 42", domain.ChatContext{})
	require.NoError(t, err, "backend failure becomes a transcript message, not an error")

	require.Len(t, replies, 1)
	assert.Equal(t, "❌ Failed to add note. Please check that patient #42 exists.", replies[0].Content)
}

func TestSummarize_NeedsCurrentPatient(t *testing.T) {
	patients := &fakePatients{}
	engine := newEngine(intentOf(domain.IntentSummarizeNotes), nil, patients)

	replies, err := engine.Send(context.Background(), "summarize the notes", domain.ChatContext{})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, msgSummaryNeedsPatient, replies[0].Content)
	assert.Zero(t, patients.getFreshCalls)
}

func TestSummarize_ZeroNotesSkipsCompletion(t *testing.T) {
	completion := &fakeCompletion{reply: "should not be called"}
	patients := &fakePatients{
		getFreshFn: func(_ context.Context, id int) (*domain.Patient, error) {
			return &domain.Patient{ID: id}, nil
		},
	}
	engine := newEngine(intentOf(domain.IntentSummarizeNotes), completion, patients)

	replies, err := engine.Send(context.Background(), "summarize notes", domain.ChatContext{CurrentPatientID: 3})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, msgNoNotesToSummarize, replies[0].Content)
	assert.Empty(t, completion.calls, "completion service must not run for zero notes")
}

func TestSummarize_ReplacesPlaceholderInPlace(t *testing.T) {
	completion := &fakeCompletion{reply: "Patient is recovering well."}
	patients := &fakePatients{
		getFreshFn: func(_ context.Context, id int) (*domain.Patient, error) {
			return &domain.Patient{ID: id, Notes: []domain.Note{
				{ID: 1, Content: "fever", CreatedAt: domain.NewDate(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))},
				{ID: 2, Content: "fever resolved", CreatedAt: domain.NewDate(time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))},
			}}, nil
		},
	}
	engine := newEngine(intentOf(domain.IntentSummarizeNotes), completion, patients)

	replies, err := engine.Send(context.Background(), "summarize notes", domain.ChatContext{CurrentPatientID: 3})
	require.NoError(t, err)

	// One appended message whose content was replaced in place.
	require.Len(t, replies, 1)
	assert.Equal(t, summaryHeading+"Patient is recovering well.", replies[0].Content)

	transcript := engine.Transcript()
	assert.Equal(t, summaryHeading+"Patient is recovering well.", transcript[len(transcript)-1].Content)

	// The notes were rendered oldest-to-newest as numbered lines.
	require.Len(t, completion.calls, 1)
	userMsg := completion.calls[0][1].Content
	assert.Contains(t, userMsg, "1. [Aug 1, 2026] fever")
	assert.Contains(t, userMsg, "2. [Aug 10, 2026] fever resolved")
}

func TestSummarize_CompletionFailureLeavesPlaceholder(t *testing.T) {
	completion := &fakeCompletion{err: errors.New("timeout")}
	patients := &fakePatients{
		getFreshFn: func(_ context.Context, id int) (*domain.Patient, error) {
			return &domain.Patient{ID: id, Notes: []domain.Note{{ID: 1, Content: "fever"}}}, nil
		},
	}
	engine := newEngine(intentOf(domain.IntentSummarizeNotes), completion, patients)

	replies, err := engine.Send(context.Background(), "summarize notes", domain.ChatContext{CurrentPatientID: 3})
	require.NoError(t, err)

	// The placeholder stays, and the failure message is appended after it.
	require.Len(t, replies, 2)
	assert.Equal(t, msgSummaryPlaceholder, replies[0].Content)
	assert.Equal(t, msgSummaryFailed, replies[1].Content)
}

func TestSummarize_FetchFailure(t *testing.T) {
	patients := &fakePatients{
		getFreshFn: func(context.Context, int) (*domain.Patient, error) {
			return nil, errors.New("backend down")
		},
	}
	engine := newEngine(intentOf(domain.IntentSummarizeNotes), nil, patients)

	replies, err := engine.Send(context.Background(), "summarize notes", domain.ChatContext{CurrentPatientID: 3})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, msgSummaryFailed, replies[0].Content)
}

func TestFilter_IsPureOverCallerCollection(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	today := domain.NewDate(now)
	yesterday := domain.NewDate(now.AddDate(0, 0, -1))

	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent: domain.IntentFilterPatients,
		Filter: &domain.FilterData{Criteria: "seen today", Timeframe: domain.TimeframeToday},
	}}
	patients := &fakePatients{}
	engine := newEngine(classifier, nil, patients)
	engine.now = func() time.Time { return now }

	chatCtx := domain.ChatContext{Patients: []domain.Patient{
		{ID: 1, FirstName: "Ada", LastName: "Osei", LastVisitDate: &today},
		{ID: 2, FirstName: "Ben", LastName: "Cho", LastVisitDate: &yesterday},
	}}

	replies, err := engine.Send(context.Background(), "who came in today?", chatCtx)
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Content, "Found 1 patient(s):")
	assert.Contains(t, replies[0].Content, "• Ada Osei - Last visit: Aug 28, 2026")
	assert.NotContains(t, replies[0].Content, "Ben Cho")
	assert.Zero(t, patients.anyCalls, "filtering must not touch the backend")
}

func TestFilter_EmptyCollection(t *testing.T) {
	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent: domain.IntentFilterPatients,
		Filter: &domain.FilterData{Timeframe: domain.TimeframeToday},
	}}
	engine := newEngine(classifier, nil, nil)

	replies, err := engine.Send(context.Background(), "filter patients", domain.ChatContext{})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, msgNoPatientsToFilter, replies[0].Content)
}

func TestFilter_NoMatchesNamesCriteria(t *testing.T) {
	classifier := &cannedClassifier{result: domain.IntentResult{
		Intent: domain.IntentFilterPatients,
		Filter: &domain.FilterData{Criteria: "visited today", Timeframe: domain.TimeframeToday},
	}}
	engine := newEngine(classifier, nil, nil)

	chatCtx := domain.ChatContext{Patients: []domain.Patient{{ID: 1, FirstName: "Ada", LastName: "Osei"}}}
	replies, err := engine.Send(context.Background(), "filter", chatCtx)
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, `No patients found matching "visited today".`, replies[0].Content)
}

func TestGeneralChat_SendsHistoryWindow(t *testing.T) {
	completion := &fakeCompletion{reply: "ok"}
	engine := newEngine(intentOf(domain.IntentUnknown), completion, nil)

	for _, msg := range []string{"one", "two", "three", "four"} {
		_, err := engine.Send(context.Background(), msg, domain.ChatContext{})
		require.NoError(t, err)
	}

	last := completion.calls[len(completion.calls)-1]
	// system + capped history + current user turn.
	assert.Equal(t, "system", last[0].Role)
	assert.Equal(t, generalChatSystemPrompt, last[0].Content)
	assert.LessOrEqual(t, len(last), 2+generalChatHistoryTurns)
	assert.Equal(t, "four", last[len(last)-1].Content)

	// History excludes the in-flight user turn.
	for _, m := range last[1 : len(last)-1] {
		assert.NotEqual(t, "four", m.Content)
	}
}

func TestGeneralChat_FailureAppendsApology(t *testing.T) {
	completion := &fakeCompletion{err: errors.New("rate limited")}
	engine := newEngine(intentOf(domain.IntentUnknown), completion, nil)

	replies, err := engine.Send(context.Background(), "hello", domain.ChatContext{})
	require.NoError(t, err)

	require.Len(t, replies, 1)
	assert.Equal(t, apologyGeneric, replies[0].Content)
}

func TestParseAddNoteText(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantContent string
		wantID      int
	}{
		{"userid clause", "Add note: patient reports fever, for userid: 7", "patient reports fever", 7},
		{"patient id clause", "add note: bp elevated for patient id 12", "bp elevated", 12},
		{"bare id clause", "ADD NOTE follow up needed, for id: 3", "follow up needed", 3},
		{"no clause", "add note: patient reports headache", "patient reports headache", 0},
		{"no colon", "add note patient sleeping better", "patient sleeping better", 0},
		{"not an add note", "summarize the notes", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, id := parseAddNoteText(tt.in)
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestTranscript_ReturnsCopy(t *testing.T) {
	engine := newEngine(intentOf(domain.IntentUnknown), nil, nil)

	transcript := engine.Transcript()
	transcript[0].Content = strings.ToUpper(transcript[0].Content)

	assert.Equal(t, greetingMessage, engine.Transcript()[0].Content)
}
