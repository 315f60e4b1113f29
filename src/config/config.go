package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ConfigPathEnvVar = "SNAPASK_CONFIG"

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-pro-vision"
)

// ErrNoCredentials means neither vendor has an API key configured. Startup
// must abort before any window is created when this is returned.
var ErrNoCredentials = errors.New("no API key configured for openai or gemini")

// Vendor identifies which vision provider is active for the process lifetime.
type Vendor string

const (
	VendorOpenAI Vendor = "openai"
	VendorGemini Vendor = "gemini"
)

type VendorConfig struct {
	APIKey string `json:"apiKey"`
	Model  string `json:"model"`
}

type Config struct {
	OpenAI            VendorConfig `json:"openai"`
	Gemini            VendorConfig `json:"gemini"`
	EnableFileLogging bool         `json:"enableFileLogging"`
}

type LoadOptions struct {
	PathOverride string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions reads configuration from sources in priority order:
//  1. JSON config file (override path, SNAPASK_CONFIG, or the default under
//     the user config directory)
//  2. .env in the application (executable) directory
//  3. Process environment variables
// Later sources win for the values they set.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	cfg := &Config{}

	path := resolveConfigPath(opts)
	if path != "" {
		if err := readConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}
	applyEnvOverrides(cfg)

	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = DefaultOpenAIModel
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = DefaultGeminiModel
	}

	return cfg, nil
}

// Vendor applies the selection rule: openai wins when both keys are present,
// and the choice never changes after startup.
func (c *Config) Vendor() (Vendor, error) {
	switch {
	case c.OpenAI.APIKey != "":
		return VendorOpenAI, nil
	case c.Gemini.APIKey != "":
		return VendorGemini, nil
	default:
		return "", ErrNoCredentials
	}
}

// Active returns the vendor config for the selected vendor.
func (c *Config) Active() (Vendor, VendorConfig, error) {
	vendor, err := c.Vendor()
	if err != nil {
		return "", VendorConfig{}, err
	}
	if vendor == VendorOpenAI {
		return vendor, c.OpenAI, nil
	}
	return vendor, c.Gemini, nil
}

func resolveConfigPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.PathOverride); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		return p
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(configDir, "snapask", "config.json")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func readConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("ENABLE_FILE_LOGGING"); v != "" {
		cfg.EnableFileLogging = strings.ToLower(v) == "true"
	}
}
