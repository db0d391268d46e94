package tui

import "errors"

// ErrMissingPatientService is returned when the patient service is not provided.
var ErrMissingPatientService = errors.New("tui: patient service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
