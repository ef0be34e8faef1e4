package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.ListenAddr != ":8000" {
		t.Errorf("Expected listen addr :8000, got %q", cfg.ListenAddr)
	}
	if cfg.MaxNewTokens != 96 {
		t.Errorf("Expected max new tokens 96, got %d", cfg.MaxNewTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", cfg.Temperature)
	}
	if cfg.TopP != 0.9 {
		t.Errorf("Expected top_p 0.9, got %v", cfg.TopP)
	}
	if cfg.RepPenalty != 1.05 {
		t.Errorf("Expected repetition penalty 1.05, got %v", cfg.RepPenalty)
	}
	if !cfg.DoSample {
		t.Error("Expected sampling enabled by default")
	}
	if cfg.MaxInputTokens != 1024 {
		t.Errorf("Expected max input tokens 1024, got %d", cfg.MaxInputTokens)
	}
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxNewTokens != 96 {
		t.Errorf("Expected defaults, got max_new_tokens %d", cfg.MaxNewTokens)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected config file to be created: %v", err)
	}
}

func TestLoadMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	// A partial file keeps defaults for everything it omits
	content := "model_name: /models/custom\ntemperature: 0.3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ModelName != "/models/custom" {
		t.Errorf("Expected model name from file, got %q", cfg.ModelName)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Expected temperature from file, got %v", cfg.Temperature)
	}
	if cfg.TopP != 0.9 {
		t.Errorf("Expected default top_p, got %v", cfg.TopP)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model_name: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MODEL_NAME", "/models/env")
	t.Setenv("CHAT_TEMP", "0.5")
	t.Setenv("MAX_NEW_TOKENS", "128")
	t.Setenv("TOP_P", "0.8")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.ModelName != "/models/env" {
		t.Errorf("Expected MODEL_NAME override, got %q", cfg.ModelName)
	}
	if cfg.Temperature != 0.5 {
		t.Errorf("Expected CHAT_TEMP override, got %v", cfg.Temperature)
	}
	if cfg.MaxNewTokens != 128 {
		t.Errorf("Expected MAX_NEW_TOKENS override, got %d", cfg.MaxNewTokens)
	}
	if cfg.TopP != 0.8 {
		t.Errorf("Expected TOP_P override, got %v", cfg.TopP)
	}
}

func TestApplyEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_NEW_TOKENS", "lots")
	t.Setenv("CHAT_TEMP", "warm")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.MaxNewTokens != 96 {
		t.Errorf("Malformed int should keep default, got %d", cfg.MaxNewTokens)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Malformed float should keep default, got %v", cfg.Temperature)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.ModelName = "/models/saved"
	cfg.MaxNewTokens = 64
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ModelName != "/models/saved" {
		t.Errorf("Expected saved model name, got %q", loaded.ModelName)
	}
	if loaded.MaxNewTokens != 64 {
		t.Errorf("Expected saved max_new_tokens, got %d", loaded.MaxNewTokens)
	}
}

func TestGenDefaults(t *testing.T) {
	cfg := Default()
	params := cfg.GenDefaults()

	if params.MaxNewTokens != cfg.MaxNewTokens ||
		params.Temperature != cfg.Temperature ||
		params.TopP != cfg.TopP ||
		params.RepetitionPenalty != cfg.RepPenalty ||
		params.DoSample != cfg.DoSample {
		t.Errorf("GenDefaults should mirror the config, got %+v", params)
	}
}
