package services

import (
	"context"
	"encoding/json"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driven"
	"github.com/medboard-labs/medboard-cli/internal/logger"
)

// Classifier turns a free-text user message into a structured IntentResult
// by prompting the completion service with a constrained contract and
// extracting a JSON object from whatever text comes back.
//
// Classify never fails: any completion error, missing JSON span, or
// unparseable span degrades to the unknown intent with a canned apology.
type Classifier struct {
	completion driven.CompletionService
}

// NewClassifier creates a new intent classifier.
func NewClassifier(completion driven.CompletionService) *Classifier {
	return &Classifier{completion: completion}
}

// intentEnvelope is the JSON contract the classifier prompt demands.
// All data fields are nullable; the model omits the ones that do not apply.
type intentEnvelope struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Data       struct {
		PatientID      *int    `json:"patientId"`
		NoteContent    *string `json:"noteContent"`
		FilterCriteria *string `json:"filterCriteria"`
		Timeframe      *string `json:"timeframe"`
	} `json:"data"`
	Response string `json:"response"`
}

// Classify sends [system, user] to the completion service and parses the
// first balanced {...} span out of the reply.
func (c *Classifier) Classify(ctx context.Context, userMessage string) domain.IntentResult {
	reply, err := c.completion.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: classifierSystemPrompt},
		{Role: "user", Content: userMessage},
	})
	if err != nil {
		logger.Warn("classifier: completion failed: %v", err)
		return domain.UnknownIntent(apologyCouldNotUnderstand)
	}

	span, ok := extractJSON(reply)
	if !ok {
		logger.Debug("classifier: no JSON object in reply")
		return domain.UnknownIntent(apologyCouldNotUnderstand)
	}

	var env intentEnvelope
	if err := json.Unmarshal([]byte(span), &env); err != nil {
		// Models occasionally emit almost-JSON. Same degradation as a
		// missing span.
		logger.Debug("classifier: unparseable JSON span: %v", err)
		return domain.UnknownIntent(apologyCouldNotUnderstand)
	}

	result := domain.IntentResult{
		Intent:     domain.ParseIntent(env.Intent),
		Confidence: env.Confidence,
		Response:   env.Response,
	}

	switch result.Intent {
	case domain.IntentAddNote:
		data := &domain.AddNoteData{}
		if env.Data.PatientID != nil {
			data.PatientID = *env.Data.PatientID
		}
		if env.Data.NoteContent != nil {
			data.NoteContent = *env.Data.NoteContent
		}
		result.AddNote = data
	case domain.IntentFilterPatients:
		data := &domain.FilterData{}
		if env.Data.FilterCriteria != nil {
			data.Criteria = *env.Data.FilterCriteria
		}
		if env.Data.Timeframe != nil {
			data.Timeframe = domain.ParseTimeframe(*env.Data.Timeframe)
		}
		result.Filter = data
	}

	logger.Debug("classifier: intent=%s confidence=%.2f", result.Intent, result.Confidence)
	return result
}

// extractJSON returns the first balanced {...} span in s. Braces inside
// JSON strings are skipped, as are escaped quotes.
func extractJSON(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
