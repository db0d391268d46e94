package domain

import "strings"

// Intent is the classified purpose of a user's chat message.
type Intent string

const (
	// IntentAddNote appends a visit note to a patient.
	IntentAddNote Intent = "add_note"

	// IntentSummarizeNotes summarises the current patient's notes.
	IntentSummarizeNotes Intent = "summarize_notes"

	// IntentFilterPatients filters the loaded patient list by timeframe.
	IntentFilterPatients Intent = "filter_patients"

	// IntentUnknown is everything else; it routes to general chat.
	IntentUnknown Intent = "unknown"
)

// ParseIntent maps a classifier string onto an Intent. Anything
// unrecognised is unknown.
func ParseIntent(s string) Intent {
	switch Intent(strings.TrimSpace(strings.ToLower(s))) {
	case IntentAddNote:
		return IntentAddNote
	case IntentSummarizeNotes:
		return IntentSummarizeNotes
	case IntentFilterPatients:
		return IntentFilterPatients
	default:
		return IntentUnknown
	}
}

// Timeframe selects a last-visit window for patient filtering.
type Timeframe string

const (
	// TimeframeNone applies no filtering; the full collection passes through.
	TimeframeNone Timeframe = ""

	// TimeframeToday matches visits on today's calendar day (local time).
	TimeframeToday Timeframe = "today"

	// TimeframeThisWeek matches visits within the last 7 days, inclusive.
	TimeframeThisWeek Timeframe = "this_week"

	// TimeframeThisMonth matches visits in today's calendar month and year.
	TimeframeThisMonth Timeframe = "this_month"
)

// ParseTimeframe maps a classifier string onto a Timeframe. The model
// sometimes returns "this week" rather than "this_week"; both are accepted.
// Anything unrecognised becomes TimeframeNone.
func ParseTimeframe(s string) Timeframe {
	normalised := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), " ", "_")
	switch Timeframe(normalised) {
	case TimeframeToday:
		return TimeframeToday
	case TimeframeThisWeek:
		return TimeframeThisWeek
	case TimeframeThisMonth:
		return TimeframeThisMonth
	default:
		return TimeframeNone
	}
}

// AddNoteData carries the extracted inputs for the add_note intent.
// A zero PatientID means the classifier did not identify a target.
type AddNoteData struct {
	PatientID   int
	NoteContent string
}

// FilterData carries the extracted inputs for the filter_patients intent.
type FilterData struct {
	// Criteria is the user's free-text description of the filter, echoed
	// back when no patient matches.
	Criteria string

	Timeframe Timeframe
}

// IntentResult is the classifier's structured judgment of one user message.
// The intent-specific payload is a tagged union keyed by Intent: exactly the
// variant matching Intent is populated, eliminating invalid field
// combinations. Confidence is advisory only; no handler gates on it.
type IntentResult struct {
	Intent     Intent
	Confidence float64

	// Response is a human-readable reply suggested by the classifier.
	// Handlers do not consult it; it is retained because it is part of the
	// classifier's output contract.
	Response string

	// AddNote is set when Intent is IntentAddNote.
	AddNote *AddNoteData

	// Filter is set when Intent is IntentFilterPatients.
	Filter *FilterData
}

// UnknownIntent builds the canonical degraded result used whenever
// classification fails or yields nothing structured.
func UnknownIntent(response string) IntentResult {
	return IntentResult{
		Intent:     IntentUnknown,
		Confidence: 0,
		Response:   response,
	}
}
