// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The assistant engine and intent classifier live here, alongside the
// cached patient manager. Handlers convert every downstream failure into
// a transcript message; only input-contract violations surface as errors.
package services
