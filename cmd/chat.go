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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/perechat/internal"
	"github.com/valpere/perechat/internal/lang"
	"github.com/valpere/perechat/internal/llm"
	"github.com/valpere/perechat/internal/orchestrator"
	"github.com/valpere/perechat/internal/progress"
	"github.com/valpere/perechat/internal/validator"
)

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	client, err := buildClient(ctx, settings)
	if err != nil {
		return err
	}
	tr, err := buildTranslator(settings)
	if err != nil {
		return err
	}

	out := progress.NewLockedWriter(cmd.OutOrStdout())

	request, err := readRequest(cmd.InOrStdin(), out, args)
	if err != nil {
		return err
	}

	userLang := lang.Resolve(settings.UserLanguage)
	opts := []orchestrator.Option{
		orchestrator.WithOutput(out),
		orchestrator.WithLogger(logger),
	}
	if tr != nil {
		opts = append(opts, orchestrator.WithTranslator(tr))
	}
	orch := orchestrator.New(client, orchestrator.OrchestratorConfig{
		WorkingLanguage:  lang.Resolve(settings.WorkingLanguage),
		UserLanguage:     userLang,
		RefineIterations: settings.RefineIterations,
	}, opts...)

	indicator := progress.New(out)
	indicator.Start()
	defer indicator.Stop()

	result, err := orch.Execute(ctx, request, indicator)
	if err != nil {
		return err
	}

	if settings.CheckLanguage {
		if err := validator.New().Check(result.Final, userLang); err != nil {
			logger.Warn("answer language check failed", "err", err)
		}
	}

	if settings.History != "" {
		recordExchange(ctx, settings.History, client, result)
	}
	return nil
}

// readRequest joins args into the request, or prompts for a single line on
// in when there are none.
func readRequest(in io.Reader, out io.Writer, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	fmt.Fprint(out, "User: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read request: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// recordExchange appends the finished run to the history database. Failures
// are logged and never affect the exit status.
func recordExchange(ctx context.Context, path string, client llm.Client, result *orchestrator.OrchestratorResult) {
	db, err := openHistory(path)
	if err != nil {
		logger.Warn("history unavailable", "err", err)
		return
	}
	defer db.Close()

	ex := internal.Exchange{
		Request:         result.Request,
		Echo:            result.Echo,
		FinalText:       result.Final,
		Provider:        client.Name(),
		Model:           llm.ModelName(client),
		WorkingLanguage: settings.WorkingLanguage,
		UserLanguage:    settings.UserLanguage,
	}
	for _, c := range result.Calls {
		ex.Calls = append(ex.Calls, internal.ExchangeCall{
			Seq:       c.Seq,
			Stage:     string(c.Stage),
			Prompt:    c.Prompt,
			Output:    c.Output,
			LatencyMs: c.Latency.Milliseconds(),
		})
	}

	id, err := db.SaveExchange(ctx, ex)
	if err != nil {
		logger.Warn("failed to record exchange", "err", err)
		return
	}
	logger.Debug("exchange recorded", "id", id, "calls", len(ex.Calls))
}
