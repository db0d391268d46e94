// Package cli provides the cobra command-line interface for Medboard.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/medboard-labs/medboard-cli/internal/core/ports/driving"
	"github.com/medboard-labs/medboard-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired in by the composition root before Execute runs.
var (
	patientService   driving.PatientService
	assistantService driving.AssistantService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "medboard",
	Short: "Patient records dashboard with an AI assistant",
	Long: `Medboard is a terminal client for a patient records service.

It provides patient CRUD, visit notes, and an AI chat assistant that can
add notes, summarize a patient's history, and filter the patient list
from natural language.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices wires the application services into the command tree.
// The assistant may be nil when no completion credential is configured;
// commands that need it fail with a clear message.
func SetServices(patients driving.PatientService, assistant driving.AssistantService) {
	patientService = patients
	assistantService = assistant
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
