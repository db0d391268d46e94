// Command medboard is a terminal dashboard for a patient records service,
// with an optional AI assistant for notes and roster questions.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/medboard-labs/medboard-cli/internal/adapters/driven/cache/memory"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driven/config/file"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driven/llm/openai"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driven/records"
	"github.com/medboard-labs/medboard-cli/internal/adapters/driving/cli"
	"github.com/medboard-labs/medboard-cli/internal/core/ports/driving"
	"github.com/medboard-labs/medboard-cli/internal/core/services"
	"github.com/medboard-labs/medboard-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "medboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env in the working directory is a convenience for development;
	// its absence is not an error.
	_ = godotenv.Load()

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	patientService := buildPatientService(cfg)
	assistantService := buildAssistantService(cfg, patientService)

	cli.SetVersion(version)
	cli.SetServices(patientService, assistantService)
	return cli.Execute()
}

// buildPatientService wires the records client and cache behind the
// patient manager.
func buildPatientService(cfg *file.ConfigStore) driving.PatientService {
	recordsCfg := records.Config{
		BaseURL: firstNonEmpty(os.Getenv("MEDBOARD_API_URL"), cfg.GetString("api.base_url")),
	}
	if secs := cfg.GetInt("api.timeout_seconds"); secs > 0 {
		recordsCfg.Timeout = time.Duration(secs) * time.Second
	}

	client := records.NewClient(recordsCfg)
	cache := memory.NewPatientStore()
	return services.NewPatientManager(client, cache)
}

// buildAssistantService wires the completion client, classifier and
// dispatch engine. The assistant is optional: without an API key it is
// nil and the rest of the application still works.
func buildAssistantService(cfg *file.ConfigStore, patients driving.PatientService) driving.AssistantService {
	apiKey := firstNonEmpty(os.Getenv("MEDBOARD_AI_API_KEY"), cfg.GetString("ai.api_key"))
	if apiKey == "" {
		logger.Debug("no AI API key configured, assistant disabled")
		return nil
	}

	completion, err := openai.NewCompletionClient(openai.Config{
		APIKey:  apiKey,
		BaseURL: firstNonEmpty(os.Getenv("MEDBOARD_AI_API_URL"), cfg.GetString("ai.base_url")),
		Model:   firstNonEmpty(os.Getenv("MEDBOARD_AI_MODEL"), cfg.GetString("ai.model")),
	})
	if err != nil {
		logger.Warn("assistant disabled: %v", err)
		return nil
	}

	classifier := services.NewClassifier(completion)
	return services.NewAssistantEngine(classifier, completion, patients)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
