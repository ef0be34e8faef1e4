package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Pushya04/Mental-Health-Chatbot/pkg/models"
)

// Config represents the application configuration
type Config struct {
	ModelName      string  `yaml:"model_name"`
	ClassifierDir  string  `yaml:"classifier_dir"`
	DBPath         string  `yaml:"db_path"`
	ListenAddr     string  `yaml:"listen_addr"`
	MaxNewTokens   int     `yaml:"max_new_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TopP           float64 `yaml:"top_p"`
	RepPenalty     float64 `yaml:"repetition_penalty"`
	DoSample       bool    `yaml:"do_sample"`
	MaxInputTokens int     `yaml:"max_input_tokens"`
	NumThreads     int     `yaml:"num_threads"`
}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		ModelName:      filepath.Join(homeDir, ".empatalk", "models", "tinyllama"),
		ClassifierDir:  filepath.Join(homeDir, ".empatalk", "models", "alert"),
		DBPath:         filepath.Join(homeDir, ".empatalk", "empatalk.db"),
		ListenAddr:     ":8000",
		MaxNewTokens:   96,
		Temperature:    0.7,
		TopP:           0.9,
		RepPenalty:     1.05,
		DoSample:       true,
		MaxInputTokens: 1024,
		NumThreads:     4,
	}
}

// Load reads configuration from file, creating it with defaults if it doesn't
// exist, then applies environment overrides on top.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		cfg.ApplyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default() // Start with defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides configuration values from environment variables.
// Malformed numeric values are logged and ignored, keeping the current value;
// a bad variable never fails startup.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MODEL_NAME"); v != "" {
		c.ModelName = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	c.MaxNewTokens = envInt("MAX_NEW_TOKENS", c.MaxNewTokens)
	c.Temperature = envFloat("CHAT_TEMP", c.Temperature)
	c.TopP = envFloat("TOP_P", c.TopP)
	c.RepPenalty = envFloat("REP_PEN", c.RepPenalty)
	c.MaxInputTokens = envInt("MAX_INPUT_TOKENS", c.MaxInputTokens)
	c.NumThreads = envInt("NUM_THREADS", c.NumThreads)
}

// GenDefaults returns the configured default generation parameters
func (c *Config) GenDefaults() models.GenParams {
	return models.GenParams{
		MaxNewTokens:      c.MaxNewTokens,
		Temperature:       c.Temperature,
		TopP:              c.TopP,
		RepetitionPenalty: c.RepPenalty,
		DoSample:          c.DoSample,
	}
}

// Save writes the configuration to file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".empatalk", "config.yaml")
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Warning: ignoring %s=%q: %v", key, v, err)
		return fallback
	}
	return f
}
