/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/perechat/internal/config"
)

var version = "0.1.0"

var (
	cfgFile  string
	v        = viper.New()
	settings *config.Settings
	logger   *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "perechat [request...]",
	Short: "CLI chat client with a multi-pass LLM pipeline",
	Long: `A CLI chat client that answers one request through a fixed pipeline:
the request is echoed back in the working language, answered, refined
several times, and finally localized into the user's language.

Supported providers: Gemini (GOOGLE_API_KEY), OpenRouter (OPENROUTER_API_KEY), Ollama

The credential is read from the .env file first and the environment second.
Use "perechat history --help" to inspect recorded exchanges.`,
	Version:           version,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              runChat,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "YAML settings file")
	flags.String("provider", config.DefaultProvider, "Model provider: gemini, openrouter, ollama")
	flags.String("model", "", "Model identifier (provider default when empty)")
	flags.String("base-url", "", "Override the provider endpoint")
	flags.String("env-file", config.DefaultEnvFile, "Dotenv file consulted for the credential")
	flags.String("working-language", config.DefaultWorkingLanguage, "Language the request is echoed in")
	flags.String("user-language", config.DefaultUserLanguage, "Language of the final answer")
	flags.Int("refine-iterations", config.DefaultRefineIters, "Number of refinement passes")
	flags.Duration("timeout", 0, "Per-call timeout (0 waits indefinitely)")
	flags.Int("max-attempts", config.DefaultMaxAttempts, "Attempts per model call")
	flags.Duration("retry-delay", config.DefaultRetryDelay, "Pause between attempts")
	flags.String("translation-backend", config.DefaultBackend, "Backend for echo and localization: llm, google, mymemory")
	flags.String("mymemory-email", "", "Contact email sent to MyMemory for a larger quota")
	flags.String("history", "", "SQLite database for transcript history (off when empty)")
	flags.Bool("clean-output", false, "Strip reasoning blocks, preambles and wrapping quotes from model output")
	flags.Bool("check-language", false, "Warn when the answer is not in the user's language")
	flags.Bool("debug", false, "Enable debug logging")

	for _, name := range []string{
		"provider", "model", "base-url", "env-file", "working-language", "user-language",
		"refine-iterations", "timeout", "max-attempts", "retry-delay", "translation-backend",
		"mymemory-email", "history", "clean-output", "check-language", "debug",
	} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
}

// loadSettings merges flags, the optional YAML file and PERECHAT_*
// environment variables into settings and sets up the logger.
func loadSettings(cmd *cobra.Command, args []string) error {
	v.SetEnvPrefix("PERECHAT")
	v.AutomaticEnv()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	s, err := config.Load(v)
	if err != nil {
		return err
	}
	settings = s
	logger = newLogger(s.Debug)
	logger.Debug("settings loaded", "provider", s.Provider, "model", s.Model, "backend", s.TranslationBackend)
	return nil
}
