package domain

// ChatState is the dispatch engine's phase within one turn.
type ChatState string

const (
	// ChatIdle means the engine is awaiting user input.
	ChatIdle ChatState = "idle"

	// ChatClassifying means the user message is being classified.
	ChatClassifying ChatState = "classifying"

	// ChatHandling means an intent handler is executing.
	ChatHandling ChatState = "handling"
)

// ChatContext carries the caller's view of the world into one dispatch
// turn: the patient collection it has loaded and the patient whose detail
// view is open, if any. The engine reads this snapshot to resolve ambiguous
// references ("this patient") but never owns the data.
type ChatContext struct {
	// Patients is the already-loaded collection. Filtering operates on
	// exactly this slice and issues no backend call.
	Patients []Patient

	// CurrentPatientID is the open detail view's patient, or 0 when the
	// caller is on the list view.
	CurrentPatientID int
}
