package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != ProviderGemini {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderGemini)
	}
	if diff := cmp.Diff(GeminiModels, cfg.Models); diff != "" {
		t.Errorf("Models mismatch (-want +got):\n%s", diff)
	}
	if cfg.ContextWindow != 8 || cfg.RetryBudget != 3 {
		t.Errorf("ContextWindow/RetryBudget = %d/%d, want 8/3", cfg.ContextWindow, cfg.RetryBudget)
	}
	if cfg.BaseBackoff() != 1500*time.Millisecond || cfg.MaxBackoff() != 6*time.Second {
		t.Errorf("backoff = %v..%v", cfg.BaseBackoff(), cfg.MaxBackoff())
	}
	if cfg.LongMessageThreshold != 200 || cfg.PreviewLength != 160 {
		t.Errorf("thresholds = %d/%d, want 200/160", cfg.LongMessageThreshold, cfg.PreviewLength)
	}
	if cfg.AuditMaxAge() != 30*24*time.Hour {
		t.Errorf("AuditMaxAge = %v", cfg.AuditMaxAge())
	}

	// Derived paths should be children of WhisprDir.
	if filepath.Dir(cfg.AuditDir) != cfg.WhisprDir {
		t.Errorf("AuditDir %q is not a child of WhisprDir %q", cfg.AuditDir, cfg.WhisprDir)
	}
	if filepath.Dir(cfg.LogFile) != cfg.WhisprDir {
		t.Errorf("LogFile %q is not a child of WhisprDir %q", cfg.LogFile, cfg.WhisprDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestDefaultConfigModelsAreCopies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Models[0] = "changed"
	if GeminiModels[0] == "changed" {
		t.Fatal("DefaultConfig must not alias the package model list")
	}
}

// loadTOML loads body over temp-rooted defaults. A nil body leaves the
// config file absent.
func loadTOML(t *testing.T, body *string) (cfg, defaults Config, warnings []string, err error) {
	t.Helper()
	dir := t.TempDir()
	defaults = testDefaults(dir)
	path := filepath.Join(dir, "config.toml")
	if body != nil {
		if werr := os.WriteFile(path, []byte(*body), 0o644); werr != nil {
			t.Fatal(werr)
		}
	}
	cfg, warnings, err = LoadFrom(path, defaults)
	return cfg, defaults, warnings, err
}

func ptr(s string) *string { return &s }

func TestLoadFrom(t *testing.T) {
	customDir := filepath.Join(t.TempDir(), "custom-whispr")
	customAudit := filepath.Join(t.TempDir(), "my-audit")

	tests := []struct {
		name         string
		body         *string
		wantErr      bool
		wantWarnings []string
		check        func(t *testing.T, cfg, defaults Config)
	}{
		{
			name: "missing file yields defaults",
			check: func(t *testing.T, cfg, defaults Config) {
				if diff := cmp.Diff(defaults, cfg); diff != "" {
					t.Errorf("config mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "known keys override and the rest stay default",
			body: ptr("context_window = 4\nmodels = [\"a\", \"b\"]\ncreator = \"Ada\"\n"),
			check: func(t *testing.T, cfg, defaults Config) {
				want := defaults
				want.ContextWindow = 4
				want.Models = []string{"a", "b"}
				want.Creator = "Ada"
				if diff := cmp.Diff(want, cfg); diff != "" {
					t.Errorf("config mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "provider switch takes that provider's models",
			body: ptr("provider = \"bedrock\"\n"),
			check: func(t *testing.T, cfg, _ Config) {
				if diff := cmp.Diff(BedrockModels, cfg.Models); diff != "" {
					t.Errorf("Models mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:    "malformed toml",
			body:    ptr("this is not [valid toml ="),
			wantErr: true,
		},
		{
			name:         "unknown keys warn",
			body:         ptr("retry_budget = 5\nretry_budjet = 1\ncontex_window = 2\n"),
			wantWarnings: []string{"retry_budjet", "contex_window"},
			check: func(t *testing.T, cfg, _ Config) {
				if cfg.RetryBudget != 5 {
					t.Errorf("RetryBudget = %d, want 5", cfg.RetryBudget)
				}
			},
		},
		{
			name: "whispr_dir moves derived paths but not explicit ones",
			body: ptr("whispr_dir = \"" + customDir + "\"\naudit_dir = \"" + customAudit + "\"\n"),
			check: func(t *testing.T, cfg, _ Config) {
				got := []string{cfg.WhisprDir, cfg.AuditDir, cfg.LogFile}
				want := []string{customDir, customAudit, filepath.Join(customDir, "whispr.log")}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("dirs mismatch (-want +got):\n%s", diff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, defaults, warnings, err := loadTOML(t, tt.body)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFrom: %v", err)
			}
			if len(warnings) != len(tt.wantWarnings) {
				t.Fatalf("warnings = %v, want %d", warnings, len(tt.wantWarnings))
			}
			for _, key := range tt.wantWarnings {
				if !strings.Contains(strings.Join(warnings, "\n"), key) {
					t.Errorf("no warning mentions %q: %v", key, warnings)
				}
			}
			if tt.check != nil {
				tt.check(t, cfg, defaults)
			}
		})
	}
}

func TestPreferModel(t *testing.T) {
	cfg := testDefaults(t.TempDir())
	cfg.Models = []string{"a", "b", "c"}

	cfg.PreferModel("c")
	if diff := cmp.Diff([]string{"c", "a", "b"}, cfg.Models); diff != "" {
		t.Errorf("existing model mismatch (-want +got):\n%s", diff)
	}
	cfg.PreferModel("z")
	if diff := cmp.Diff([]string{"z", "c", "a", "b"}, cfg.Models); diff != "" {
		t.Errorf("new model mismatch (-want +got):\n%s", diff)
	}
	cfg.PreferModel("")
	if len(cfg.Models) != 4 {
		t.Error("empty model should be ignored")
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "from-google-env")

	cfg := testDefaults(t.TempDir())
	if got := cfg.ResolveAPIKey(); got != "from-google-env" {
		t.Errorf("ResolveAPIKey() = %q, want env value", got)
	}
	cfg.APIKey = "from-file"
	if got := cfg.ResolveAPIKey(); got != "from-file" {
		t.Errorf("ResolveAPIKey() = %q, want file value", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := testDefaults(t.TempDir())
	cfg.Provider = "openai"
	cfg.Models = nil
	cfg.ContextWindow = 0
	cfg.BaseBackoffMS = 9000
	cfg.RetryBudget = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"provider", "models", "context_window", "retry_budget", "exceeds max_backoff_ms"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q: %v", want, err)
		}
	}
}

func TestEnsureDirs(t *testing.T) {
	tmp := t.TempDir()
	cfg := testDefaults(tmp)

	for round := 1; round <= 2; round++ {
		if err := cfg.EnsureDirs(); err != nil {
			t.Fatalf("EnsureDirs round %d: %v", round, err)
		}
	}
	for _, dir := range []string{cfg.WhisprDir, cfg.AuditDir} {
		fi, err := os.Stat(dir)
		switch {
		case err != nil:
			t.Errorf("stat %s: %v", dir, err)
		case !fi.IsDir() || fi.Mode().Perm() != 0o700:
			t.Errorf("%s: mode %v, want a 0700 directory", dir, fi.Mode())
		}
	}
}

func TestConfigFilePath(t *testing.T) {
	cfg := testDefaults(t.TempDir())
	want := filepath.Join(cfg.WhisprDir, "config.toml")
	if got := cfg.ConfigFilePath(); got != want {
		t.Errorf("ConfigFilePath() = %q, want %q", got, want)
	}
}

// testDefaults returns a Config rooted in a temp directory instead of $HOME.
func testDefaults(tmpDir string) Config {
	cfg := DefaultConfig()
	cfg.WhisprDir = filepath.Join(tmpDir, ".whispr")
	cfg.AuditDir = filepath.Join(cfg.WhisprDir, "audit")
	cfg.LogFile = filepath.Join(cfg.WhisprDir, "whispr.log")
	return cfg
}
