package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

var askPatientID int

var askCmd = &cobra.Command{
	Use:   "ask [message...]",
	Short: "Ask the AI assistant a single question",
	Long: `Runs one assistant turn from the command line.

The assistant can add notes, summarize a patient's history, filter the
patient list, or answer questions about the dashboard. Use --patient to
give it a current patient, the way an open detail view would in the TUI.

Examples:
  medboard ask "add note: patient reports fever, for userid: 3"
  medboard ask --patient 3 "summarize this patient's notes"
  medboard ask "show me patients from this week"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVar(&askPatientID, "patient", 0, "patient id to treat as the open detail view")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistantService == nil {
		return errors.New("assistant not configured: set an AI API key in the config file or MEDBOARD_AI_API_KEY")
	}
	if patientService == nil {
		return errors.New("patient service not configured")
	}

	input := strings.Join(args, " ")

	// The assistant filters over whatever collection the caller has
	// loaded, so load it the way the list view would.
	patients, err := patientService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("load patients: %w", err)
	}

	replies, err := assistantService.Send(cmd.Context(), input, domain.ChatContext{
		Patients:         patients,
		CurrentPatientID: askPatientID,
	})
	if err != nil {
		return fmt.Errorf("assistant: %w", err)
	}

	for _, reply := range replies {
		cmd.Println(reply.Content)
	}
	return nil
}
