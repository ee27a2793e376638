// Package config loads the API credential and the run settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultProvider        = "gemini"
	DefaultEnvFile         = ".env"
	DefaultWorkingLanguage = "American English"
	DefaultUserLanguage    = "Korean"
	DefaultRefineIters     = 5
	DefaultMaxAttempts     = 1
	DefaultBackend         = "llm"
	DefaultRetryDelay      = 2 * time.Second
)

var (
	providers = []string{"gemini", "openrouter", "ollama"}
	backends  = []string{"llm", "google", "mymemory"}
)

// Settings holds everything a single chat run needs besides the credential.
// An empty Model lets the provider pick its own default.
type Settings struct {
	Provider           string        `mapstructure:"provider" json:"provider"`
	Model              string        `mapstructure:"model" json:"model"`
	BaseURL            string        `mapstructure:"base_url" json:"base_url"`
	EnvFile            string        `mapstructure:"env_file" json:"env_file"`
	WorkingLanguage    string        `mapstructure:"working_language" json:"working_language"`
	UserLanguage       string        `mapstructure:"user_language" json:"user_language"`
	RefineIterations   int           `mapstructure:"refine_iterations" json:"refine_iterations"`
	Timeout            time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxAttempts        int           `mapstructure:"max_attempts" json:"max_attempts"`
	RetryDelay         time.Duration `mapstructure:"retry_delay" json:"retry_delay"`
	TranslationBackend string        `mapstructure:"translation_backend" json:"translation_backend"`
	MyMemoryEmail      string        `mapstructure:"mymemory_email" json:"mymemory_email"`
	History            string        `mapstructure:"history" json:"history"`
	CleanOutput        bool          `mapstructure:"clean_output" json:"clean_output"`
	CheckLanguage      bool          `mapstructure:"check_language" json:"check_language"`
	Debug              bool          `mapstructure:"debug" json:"debug"`
}

// SetDefaults registers the default value of every settings key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("env_file", DefaultEnvFile)
	v.SetDefault("working_language", DefaultWorkingLanguage)
	v.SetDefault("user_language", DefaultUserLanguage)
	v.SetDefault("refine_iterations", DefaultRefineIters)
	v.SetDefault("max_attempts", DefaultMaxAttempts)
	v.SetDefault("retry_delay", DefaultRetryDelay)
	v.SetDefault("translation_backend", DefaultBackend)
}

// Load unmarshals v into Settings and validates the result.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if !contains(providers, s.Provider) {
		return fmt.Errorf("unknown provider %q (expected one of %s)", s.Provider, strings.Join(providers, ", "))
	}
	if !contains(backends, s.TranslationBackend) {
		return fmt.Errorf("unknown translation backend %q (expected one of %s)", s.TranslationBackend, strings.Join(backends, ", "))
	}
	if s.RefineIterations < 1 {
		return fmt.Errorf("refine iterations must be at least 1, got %d", s.RefineIterations)
	}
	if s.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", s.MaxAttempts)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	return nil
}

// CredentialName returns the credential a provider needs, or "" when it
// needs none.
func CredentialName(provider string) string {
	switch provider {
	case "gemini":
		return "GOOGLE_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}

// MissingCredentialError reports a credential found in neither the dotenv
// file nor the process environment.
type MissingCredentialError struct {
	Name    string
	EnvFile string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is missing. Set %s in your environment or %s file", e.Name, e.Name, e.EnvFile)
}

// LoadCredential looks name up in the dotenv file first and the process
// environment second. A dotenv file that does not exist or cannot be parsed
// contributes nothing.
func LoadCredential(name, envFile string) (string, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	if value := readDotenv(envFile, name); value != "" {
		return value, nil
	}
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value, nil
	}
	return "", &MissingCredentialError{Name: name, EnvFile: envFile}
}

func readDotenv(path, name string) string {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return strings.TrimSpace(v.GetString(name))
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
