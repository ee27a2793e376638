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
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/valpere/perechat/internal/config"
	"github.com/valpere/perechat/internal/llm"
	"github.com/valpere/perechat/internal/store"
	"github.com/valpere/perechat/internal/translator"
)

// googleTranslateKey is the credential used by the Google Cloud Translation
// backend, shared with the Gemini provider.
const googleTranslateKey = "GOOGLE_API_KEY"

func newLogger(debug bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "perechat",
		ReportTimestamp: true,
		Level:           log.WarnLevel,
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// buildClient loads the provider credential and constructs the model client.
// A missing credential fails here, before any model call can happen.
func buildClient(ctx context.Context, s *config.Settings) (llm.Client, error) {
	var apiKey string
	if name := config.CredentialName(s.Provider); name != "" {
		key, err := config.LoadCredential(name, s.EnvFile)
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	client, err := llm.New(ctx, llm.Config{
		Provider:    s.Provider,
		APIKey:      apiKey,
		Model:       s.Model,
		BaseURL:     s.BaseURL,
		Timeout:     s.Timeout,
		MaxAttempts: s.MaxAttempts,
		RetryDelay:  s.RetryDelay,
		CleanOutput: s.CleanOutput,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", s.Provider, err)
	}
	return client, nil
}

// buildTranslator returns the translator for the echo and localization
// stages, or nil when those stages go through the model client.
func buildTranslator(s *config.Settings) (translator.Translator, error) {
	switch s.TranslationBackend {
	case "google":
		key, err := config.LoadCredential(googleTranslateKey, s.EnvFile)
		if err != nil {
			return nil, err
		}
		return translator.NewGoogleTranslator(key), nil
	case "mymemory":
		return translator.NewMyMemoryTranslator(s.MyMemoryEmail, ""), nil
	default:
		return nil, nil
	}
}

func openHistory(path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no history database configured (use --history or PERECHAT_HISTORY)")
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
