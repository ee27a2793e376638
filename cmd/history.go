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
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/perechat/internal/markdown"
)

var (
	historyLimit  int
	historyMatch  string
	historyRender bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded exchanges",
	Long: `List, show, and delete exchanges recorded in the SQLite history.
Recording is enabled with --history <path> (or PERECHAT_HISTORY).`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded exchanges, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory(settings.History)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.SearchExchanges(cmd.Context(), historyMatch, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list exchanges: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No exchanges recorded.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tPROVIDER\tMODEL\tLANG\tREQUEST")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				e.ID[:min(8, len(e.ID))], e.Timestamp.Format("2006-01-02 15:04"),
				e.Provider, e.Model, e.UserLanguage, snippet(e.Request, 40))
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an exchange and every model call it made",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory(settings.History)
		if err != nil {
			return err
		}
		defer db.Close()

		ex, err := db.GetExchange(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load exchange: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:        %s\n", ex.ID)
		fmt.Fprintf(out, "When:      %s\n", ex.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Provider:  %s (%s)\n", ex.Provider, ex.Model)
		fmt.Fprintf(out, "Languages: %s -> %s\n", ex.WorkingLanguage, ex.UserLanguage)
		fmt.Fprintf(out, "\nUser: %s\n", ex.Request)
		fmt.Fprintf(out, "Echo: %s\n", ex.Echo)
		if historyRender {
			rendered, err := markdown.Render(ex.FinalText, markdown.DefaultWidth)
			if err != nil {
				return fmt.Errorf("failed to render answer: %w", err)
			}
			fmt.Fprintf(out, "AI:\n%s\n", rendered)
		} else {
			fmt.Fprintf(out, "AI:   %s\n", ex.FinalText)
		}

		for _, c := range ex.Calls {
			fmt.Fprintf(out, "\n--- call %d [%s] %dms ---\n", c.Seq, c.Stage, c.LatencyMs)
			fmt.Fprintf(out, "> %s\n", strings.ReplaceAll(c.Prompt, "\n", "\n> "))
			fmt.Fprintf(out, "%s\n", c.Output)
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded exchange by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory(settings.History)
		if err != nil {
			return err
		}
		defer db.Close()

		ex, err := db.GetExchange(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load exchange: %w", err)
		}
		if err := db.DeleteExchange(cmd.Context(), ex.ID); err != nil {
			return fmt.Errorf("failed to delete exchange: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted exchange: %s\n", ex.ID)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every recorded exchange",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory(settings.History)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearExchanges(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d exchanges from history.\n", n)
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistory(settings.History)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Exchanges:     %d\n", stats.TotalExchanges)
		fmt.Fprintf(out, "Model calls:   %d\n", stats.TotalCalls)
		fmt.Fprintf(out, "Avg latency:   %.0fms\n", stats.AvgLatencyMs)

		providers := make([]string, 0, len(stats.ByProvider))
		for p := range stats.ByProvider {
			providers = append(providers, p)
		}
		sort.Strings(providers)
		for _, p := range providers {
			fmt.Fprintf(out, "  %-12s %d\n", p, stats.ByProvider[p])
		}
		return nil
	},
}

func snippet(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of exchanges (0 for all)")
	historyListCmd.Flags().StringVar(&historyMatch, "match", "", "Only list requests containing this text")
	historyShowCmd.Flags().BoolVar(&historyRender, "render", false, "Render the answer as markdown")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
