package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage visit notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add [patient-id] [content...]",
	Short: "Append a visit note to a patient",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runNoteAdd,
}

func init() {
	noteCmd.AddCommand(noteAddCmd)
	rootCmd.AddCommand(noteCmd)
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	if patientService == nil {
		return errors.New("patient service not configured")
	}

	id, err := parsePatientID(args[0])
	if err != nil {
		return err
	}
	content := strings.Join(args[1:], " ")

	patient, err := patientService.AddNote(cmd.Context(), id, domain.AddNotePayload{Content: content})
	if err != nil {
		return fmt.Errorf("add note to patient %d: %w", id, err)
	}

	cmd.Printf("Added note to patient #%d %s (%d notes)\n", patient.ID, patient.FullName(), len(patient.Notes))
	return nil
}
