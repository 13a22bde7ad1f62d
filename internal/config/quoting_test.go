package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

// GITHUB_STATUS_PIPELINE carries double-quoted JSON, so the .env entry has to
// survive godotenv's single-quote handling intact before it can be parsed.
func TestPipelineQuotingThroughDotenv(t *testing.T) {
	raw := `[["In Progress", 0.33], ["To be reviewed", 0.67]]`
	content := `GITHUB_STATUS_PIPELINE='` + raw + `'`

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("reading env: %v", err)
	}
	if env["GITHUB_STATUS_PIPELINE"] != raw {
		t.Fatalf("GITHUB_STATUS_PIPELINE = %q, want %q", env["GITHUB_STATUS_PIPELINE"], raw)
	}

	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("GITHUB_STATUS_PIPELINE", env["GITHUB_STATUS_PIPELINE"])

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Pipeline) != 2 {
		t.Fatalf("got %d stages, want 2", len(cfg.Pipeline))
	}
	if cfg.Pipeline[1].Name != "To be reviewed" || cfg.Pipeline[1].Weight != 0.67 {
		t.Errorf("stage[1] = %+v, want {To be reviewed 0.67}", cfg.Pipeline[1])
	}
}
