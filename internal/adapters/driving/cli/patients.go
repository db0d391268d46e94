package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medboard-labs/medboard-cli/internal/core/domain"
)

var (
	patientsJSON bool

	createFirstName string
	createLastName  string
	createAge       int
	createGender    string
	createPhone     string
	createEmail     string
	createLastVisit string

	updateFirstName string
	updateLastName  string
	updateAge       int
	updateGender    string
	updatePhone     string
	updateEmail     string
	updateLastVisit string
)

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "Manage patient records",
}

var patientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all patients",
	Args:  cobra.NoArgs,
	RunE:  runPatientsList,
}

var patientsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one patient with their notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatientsGet,
}

var patientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a patient record",
	Args:  cobra.NoArgs,
	RunE:  runPatientsCreate,
}

var patientsUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update fields of a patient record",
	Long: `Updates a patient record. Only the flags you pass are sent;
everything else is left unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runPatientsUpdate,
}

var patientsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a patient record",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatientsDelete,
}

func init() {
	patientsCmd.PersistentFlags().BoolVar(&patientsJSON, "json", false, "output as JSON")

	patientsCreateCmd.Flags().StringVar(&createFirstName, "first-name", "", "first name (required)")
	patientsCreateCmd.Flags().StringVar(&createLastName, "last-name", "", "last name (required)")
	patientsCreateCmd.Flags().IntVar(&createAge, "age", 0, "age in years")
	patientsCreateCmd.Flags().StringVar(&createGender, "gender", "", "gender")
	patientsCreateCmd.Flags().StringVar(&createPhone, "phone", "", "phone number")
	patientsCreateCmd.Flags().StringVar(&createEmail, "email", "", "email address")
	patientsCreateCmd.Flags().StringVar(&createLastVisit, "last-visit", "", "last visit date (YYYY-MM-DD)")

	patientsUpdateCmd.Flags().StringVar(&updateFirstName, "first-name", "", "first name")
	patientsUpdateCmd.Flags().StringVar(&updateLastName, "last-name", "", "last name")
	patientsUpdateCmd.Flags().IntVar(&updateAge, "age", 0, "age in years")
	patientsUpdateCmd.Flags().StringVar(&updateGender, "gender", "", "gender")
	patientsUpdateCmd.Flags().StringVar(&updatePhone, "phone", "", "phone number")
	patientsUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "email address")
	patientsUpdateCmd.Flags().StringVar(&updateLastVisit, "last-visit", "", "last visit date (YYYY-MM-DD)")

	patientsCmd.AddCommand(patientsListCmd)
	patientsCmd.AddCommand(patientsGetCmd)
	patientsCmd.AddCommand(patientsCreateCmd)
	patientsCmd.AddCommand(patientsUpdateCmd)
	patientsCmd.AddCommand(patientsDeleteCmd)
	rootCmd.AddCommand(patientsCmd)
}

func parsePatientID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid patient id %q", arg)
	}
	return id, nil
}

func runPatientsList(cmd *cobra.Command, _ []string) error {
	if patientService == nil {
		return errors.New("patient service not configured")
	}

	patients, err := patientService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list patients: %w", err)
	}

	if patientsJSON {
		return outputJSON(cmd, patients)
	}

	if len(patients) == 0 {
		cmd.Println("No patients found.")
		return nil
	}

	cmd.Printf("%-5s %-25s %-5s %-8s %-14s %s\n", "ID", "NAME", "AGE", "GENDER", "LAST VISIT", "NOTES")
	for _, p := range patients {
		cmd.Printf("%-5d %-25s %-5d %-8s %-14s %d\n",
			p.ID, p.FullName(), p.Age, p.Gender, p.FormatLastVisit(), len(p.Notes))
	}
	cmd.Printf("\n%d patient(s)\n", len(patients))
	return nil
}

func runPatientsGet(cmd *cobra.Command, args []string) error {
	if patientService == nil {
		return errors.New("patient service not configured")
	}

	id, err := parsePatientID(args[0])
	if err != nil {
		return err
	}

	patient, err := patientService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get patient %d: %w", id, err)
	}

	if patientsJSON {
		return outputJSON(cmd, patient)
	}

	cmd.Printf("#%d %s\n", patient.ID, patient.FullName())
	cmd.Printf("  Age:        %d\n", patient.Age)
	cmd.Printf("  Gender:     %s\n", patient.Gender)
	cmd.Printf("  Phone:      %s\n", patient.Phone)
	cmd.Printf("  Email:      %s\n", patient.Email)
	cmd.Printf("  Last visit: %s\n", patient.FormatLastVisit())

	if len(patient.Notes) == 0 {
		cmd.Println("  Notes:      none")
		return nil
	}
	cmd.Printf("  Notes (%d):\n", len(patient.Notes))
	for i, note := range patient.Notes {
		cmd.Printf("    %d. [%s] %s\n", i+1, note.CreatedAt.Format("Jan 2, 2006"), note.Content)
	}
	return nil
}

func runPatientsCreate(cmd *cobra.Command, _ []string) error {
	if patientService == nil {
		return errors.New("patient service not configured")
	}

	payload := domain.CreatePatientPayload{
		FirstName:     createFirstName,
		LastName:      createLastName,
		Age:           createAge,
		Gender:        createGender,
		Phone:         createPhone,
		Email:         createEmail,
		LastVisitDate: createLastVisit,
	}

	patient, fieldErrs, err := patientService.Create(cmd.Context(), payload)
	if err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	if !fieldErrs.Ok() {
		return fieldErrorsError(fieldErrs)
	}

	if patientsJSON {
		return outputJSON(cmd, patient)
	}
	cmd.Printf("Created patient #%d %s\n", patient.ID, patient.FullName())
	return nil
}

func runPatientsUpdate(cmd *cobra.Command, args []string) error {
	if patientService == nil {
		return errors.New("patient service not configured")
	}

	id, err := parsePatientID(args[0])
	if err != nil {
		return err
	}

	// Only flags the user passed become part of the partial update.
	payload := domain.UpdatePatientPayload{}
	flags := cmd.Flags()
	if flags.Changed("first-name") {
		payload.FirstName = &updateFirstName
	}
	if flags.Changed("last-name") {
		payload.LastName = &updateLastName
	}
	if flags.Changed("age") {
		payload.Age = &updateAge
	}
	if flags.Changed("gender") {
		payload.Gender = &updateGender
	}
	if flags.Changed("phone") {
		payload.Phone = &updatePhone
	}
	if flags.Changed("email") {
		payload.Email = &updateEmail
	}
	if flags.Changed("last-visit") {
		payload.LastVisitDate = &updateLastVisit
	}

	patient, fieldErrs, err := patientService.Update(cmd.Context(), id, payload)
	if err != nil {
		return fmt.Errorf("update patient %d: %w", id, err)
	}
	if !fieldErrs.Ok() {
		return fieldErrorsError(fieldErrs)
	}

	if patientsJSON {
		return outputJSON(cmd, patient)
	}
	cmd.Printf("Updated patient #%d %s\n", patient.ID, patient.FullName())
	return nil
}

func runPatientsDelete(cmd *cobra.Command, args []string) error {
	if patientService == nil {
		return errors.New("patient service not configured")
	}

	id, err := parsePatientID(args[0])
	if err != nil {
		return err
	}

	if err := patientService.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("delete patient %d: %w", id, err)
	}
	cmd.Printf("Deleted patient #%d\n", id)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func fieldErrorsError(fieldErrs domain.FieldErrors) error {
	lines := make([]string, 0, len(fieldErrs))
	for field, msg := range fieldErrs {
		lines = append(lines, fmt.Sprintf("  %s: %s", field, msg))
	}
	return fmt.Errorf("validation failed:\n%s", strings.Join(lines, "\n"))
}
