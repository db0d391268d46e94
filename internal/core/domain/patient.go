package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Age bounds accepted for a patient record.
const (
	MinAge = 0
	MaxAge = 150
)

// visitDateLayouts are the wire formats accepted for a visit date. The
// backend is not under our control; some deployments send full RFC 3339
// timestamps, others bare calendar dates.
var visitDateLayouts = []string{time.RFC3339, "2006-01-02"}

// Date is a point in time as serialised by the records API.
// It unmarshals from either an RFC 3339 timestamp or a YYYY-MM-DD date.
type Date struct {
	time.Time
}

// NewDate wraps a time.Time in a Date.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// UnmarshalJSON parses the wire representation. A JSON null leaves the
// zero value in place.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range visitDateLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("parse date %q: unrecognised format", *raw)
}

// MarshalJSON writes the RFC 3339 representation.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.RFC3339))
}

// Note is a visit note owned by its parent Patient. The identifier and
// creation timestamp are assigned by the backend; the optimistic add-note
// path fabricates a temporary identifier that the authoritative refetch
// replaces.
type Note struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	CreatedAt Date   `json:"createdAt"`
}

// Patient is a patient record. It is owned entirely by the backend; the
// client never invents identifiers except as temporary placeholders during
// optimistic updates.
type Patient struct {
	ID            int    `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LastVisitDate *Date  `json:"lastVisitDate"`
	Notes         []Note `json:"notes"`
	CreatedAt     Date   `json:"createdAt"`
	UpdatedAt     *Date  `json:"updatedAt"`
}

// FullName returns the patient's display name.
func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// FormatLastVisit renders the last-visit date for display, or "Never" when
// the patient has no recorded visit.
func (p Patient) FormatLastVisit() string {
	if p.LastVisitDate == nil || p.LastVisitDate.IsZero() {
		return "Never"
	}
	return p.LastVisitDate.Format("Jan 2, 2006")
}

// CreatePatientPayload is the request body for creating a patient.
type CreatePatientPayload struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LastVisitDate string `json:"lastVisitDate,omitempty"`
}

// UpdatePatientPayload is the request body for a partial patient update.
// Nil fields are omitted from the request and left unchanged by the backend.
type UpdatePatientPayload struct {
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	Age           *int    `json:"age,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	LastVisitDate *string `json:"lastVisitDate,omitempty"`
}

// AddNotePayload is the request body for appending a note to a patient.
type AddNotePayload struct {
	Content string `json:"content"`
}

// Validate rejects an empty or whitespace-only note before it reaches the
// backend.
func (p AddNotePayload) Validate() error {
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("%w: note content must not be empty", ErrInvalidInput)
	}
	return nil
}

// FieldErrors maps form field names to validation messages. An empty map
// means the payload is valid.
type FieldErrors map[string]string

// Ok reports whether no field failed validation.
func (e FieldErrors) Ok() bool { return len(e) == 0 }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var nonDigits = regexp.MustCompile(`\D`)

// ValidEmail reports whether the address has a plausible mailbox@host shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone reports whether the number has 10 to 15 digits once every
// non-digit character is stripped.
func ValidPhone(phone string) bool {
	digits := nonDigits.ReplaceAllString(phone, "")
	n := len(digits)
	return n >= 10 && n <= 15
}

// ParseVisitDate parses a YYYY-MM-DD form value. Empty input is valid and
// yields nil.
func ParseVisitDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%w: expected YYYY-MM-DD", ErrInvalidInput)
	}
	return &t, nil
}

// IsFutureDate reports whether the calendar day is after today's.
// Visit dates in the future are rejected at form level.
func IsFutureDate(t time.Time, now time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.After(today)
}

// Validate checks the payload field by field and returns one message per
// failing field. Submission is blocked client-side while any remain.
func (p CreatePatientPayload) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(p.FirstName) == "" {
		errs["firstName"] = "first name is required"
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs["lastName"] = "last name is required"
	}
	if p.Age < MinAge || p.Age > MaxAge {
		errs["age"] = fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge)
	}
	if !ValidEmail(p.Email) {
		errs["email"] = "enter a valid email address"
	}
	if !ValidPhone(p.Phone) {
		errs["phone"] = "phone must contain 10 to 15 digits"
	}
	if p.LastVisitDate != "" {
		t, err := ParseVisitDate(p.LastVisitDate)
		switch {
		case err != nil:
			errs["lastVisitDate"] = "enter a date as YYYY-MM-DD"
		case t != nil && IsFutureDate(*t, now):
			errs["lastVisitDate"] = "last visit date cannot be in the future"
		}
	}
	return errs
}

// Validate checks only the fields present on a partial update.
func (p UpdatePatientPayload) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}
	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) == "" {
		errs["firstName"] = "first name must not be blank"
	}
	if p.LastName != nil && strings.TrimSpace(*p.LastName) == "" {
		errs["lastName"] = "last name must not be blank"
	}
	if p.Age != nil && (*p.Age < MinAge || *p.Age > MaxAge) {
		errs["age"] = fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge)
	}
	if p.Email != nil && !ValidEmail(*p.Email) {
		errs["email"] = "enter a valid email address"
	}
	if p.Phone != nil && !ValidPhone(*p.Phone) {
		errs["phone"] = "phone must contain 10 to 15 digits"
	}
	if p.LastVisitDate != nil && *p.LastVisitDate != "" {
		t, err := ParseVisitDate(*p.LastVisitDate)
		switch {
		case err != nil:
			errs["lastVisitDate"] = "enter a date as YYYY-MM-DD"
		case t != nil && IsFutureDate(*t, now):
			errs["lastVisitDate"] = "last visit date cannot be in the future"
		}
	}
	return errs
}
