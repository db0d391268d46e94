// Package domain defines the core business entities for Medboard.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Patient: A patient record owned by the backend, with its Notes
//   - Message: One turn in the assistant conversation
//   - IntentResult: The classifier's structured judgment of a user message
//   - Timeframe: A visit-date filter window
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
