// Package records provides a patient records adapter backed by the
// Medboard REST API.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driven"
	"github.com/medboard-labs/medboard-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.RecordsClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:3001/api"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the records API client.
type Config struct {
	// BaseURL is the records API base URL (default: http://localhost:3001/api).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client provides patient record operations against the records API.
type Client struct {
	client  *http.Client
	baseURL string
}

// APIError is a non-2xx response from the records API. Message carries the
// server's error message when the body provided one, otherwise a generic
// description of the status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorBody is the records API error response format.
type errorBody struct {
	Message string `json:"message"`
}

// NewClient creates a new records API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

// do issues a request and decodes the response into out. A non-2xx status
// becomes an *APIError. A 204 or empty body leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader = http.NoBody
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("records: %s %s", method, path)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, body)
	}

	if resp.StatusCode == http.StatusNoContent || len(body) == 0 || out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError builds an *APIError, preferring the server's own message when the
// error body carried one.
func apiError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return &APIError{Status: status, Message: eb.Message}
	}
	return &APIError{
		Status:  status,
		Message: fmt.Sprintf("API error: %d %s", status, http.StatusText(status)),
	}
}

// ListPatients retrieves all patients. The API has returned both a bare
// array and a wrapped {"patients": [...]} object across versions, so both
// shapes are accepted; anything else is treated as an empty list.
func (c *Client) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/patients", nil, &raw); err != nil {
		return nil, err
	}
	return normalizeList(raw), nil
}

// normalizeList accepts the two known list response shapes.
func normalizeList(raw json.RawMessage) []domain.Patient {
	var patients []domain.Patient
	if err := json.Unmarshal(raw, &patients); err == nil {
		return patients
	}

	var wrapped struct {
		Patients []domain.Patient `json:"patients"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Patients != nil {
		return wrapped.Patients
	}

	logger.Warn("records: unrecognised list response shape, treating as empty")
	return []domain.Patient{}
}

// GetPatient retrieves a single patient by ID.
func (c *Client) GetPatient(ctx context.Context, id int) (*domain.Patient, error) {
	var patient domain.Patient
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/patients/%d", id), nil, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// CreatePatient creates a new patient record.
func (c *Client) CreatePatient(ctx context.Context, payload domain.CreatePatientPayload) (*domain.Patient, error) {
	var patient domain.Patient
	if err := c.do(ctx, http.MethodPost, "/patients", payload, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// UpdatePatient updates an existing patient record.
func (c *Client) UpdatePatient(ctx context.Context, id int, payload domain.UpdatePatientPayload) (*domain.Patient, error) {
	var patient domain.Patient
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/patients/%d", id), payload, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// DeletePatient removes a patient record.
func (c *Client) DeletePatient(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/patients/%d", id), nil, nil)
}

// AddNote appends a note to a patient's record and returns the updated
// patient.
func (c *Client) AddNote(ctx context.Context, id int, payload domain.AddNotePayload) (*domain.Patient, error) {
	var patient domain.Patient
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/patients/%d/notes", id), payload, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}
