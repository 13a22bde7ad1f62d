package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"burndown-gen/internal/burndown"
	"burndown-gen/internal/github"
	"burndown-gen/internal/issue"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration. It is built once at
// startup and passed by parameter; the core packages never read the
// environment themselves.
type AppConfig struct {
	GitHub        github.Config
	Fields        issue.FieldConfig
	Filters       issue.Filters
	Pipeline      burndown.Pipeline
	DefaultSprint string

	DataPath  string
	LogDir    string
	CacheDir  string
	OutputDir string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory first.
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")
	outputDir := filepath.Join(dataPath, "output")

	for _, dir := range []string{logDir, cacheDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create data directory")
		}
	}

	projectNumber, _ := strconv.Atoi(getEnv("GITHUB_PROJECT_NUMBER", "1"))
	delaySecs, _ := strconv.Atoi(getEnv("REQUEST_DELAY_SECONDS", "0"))

	cfg := &AppConfig{
		GitHub: github.Config{
			Token:         getEnv("GITHUB_API_TOKEN", ""),
			Owner:         getEnv("GITHUB_PROJECT_OWNER", ""),
			OwnerType:     strings.ToLower(getEnv("GITHUB_OWNER_TYPE", "user")),
			ProjectNumber: projectNumber,
			RequestDelay:  time.Duration(delaySecs) * time.Second,
		},
		Fields: issue.FieldConfig{
			IterationField: getEnv("GITHUB_FIELD_ITERATION", "Sprint #"),
			EstimateField:  getEnv("GITHUB_FIELD_ESTIMATE", "Story Points"),
			StatusField:    getEnv("GITHUB_FIELD_STATUS", "Status"),
		},
		Filters: issue.Filters{
			Labels:     splitList(os.Getenv("GITHUB_LABEL_FILTER")),
			IssueTypes: splitList(os.Getenv("GITHUB_ISSUE_TYPE_FILTER")),
		},
		Pipeline:      loadPipeline(),
		DefaultSprint: getEnv("DEFAULT_SPRINT", "N/A"),
		DataPath:      dataPath,
		LogDir:        logDir,
		CacheDir:      cacheDir,
		OutputDir:     outputDir,
	}

	return cfg, nil
}

// loadPipeline parses GITHUB_STATUS_PIPELINE, falling back to the default
// board columns when absent or malformed.
func loadPipeline() burndown.Pipeline {
	raw := os.Getenv("GITHUB_STATUS_PIPELINE")
	if raw == "" {
		return burndown.DefaultPipeline()
	}
	pipeline, err := burndown.ParsePipeline(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Could not parse GITHUB_STATUS_PIPELINE, using default pipeline")
		return burndown.DefaultPipeline()
	}
	return pipeline
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
