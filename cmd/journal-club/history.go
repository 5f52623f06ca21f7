// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-club/internal/archive"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the archive of past runs (list, show, export)",
	Long: `History reads the run archive written when archive.enabled is set. The
archive records what was selected, published and failed in each run; it is
never consulted by selection or discussion.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-16s  %-16s  %9s  %6s  %s\n",
		"Run", "Started", "Category", "Published", "Failed", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-16s  %-16s  %9d  %6d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Category, r.Published, r.Failed, runStatus(r))
	}
	return nil
}

func runStatus(r archive.Run) string {
	switch {
	case r.Error != "":
		return "aborted: " + r.Error
	case r.FinishedAt.IsZero():
		return "unfinished"
	default:
		return "finished in " + r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
	}
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the candidates of one run and their outcome",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	exp, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	r := exp.Run
	fmt.Printf("Run %s (%s), started %s, %s\n", r.ID, r.Category, r.StartedAt.Local().Format(time.RFC3339), runStatus(r))
	for _, res := range exp.Results {
		line := fmt.Sprintf("%3d  %-12s  %-9s  %s", res.Position+1, res.Paper.ID, res.Status, res.Paper.Title)
		if res.Error != "" {
			line += fmt.Sprintf("\n     %s: %s", res.Stage, res.Error)
		}
		fmt.Println(line)
	}
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export one run as YAML, JSON or HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := store.Export(cmd.Context(), args[0], format, w); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported run %s to %s\n", args[0], out)
	}
	return nil
}

// --- shared helpers ---

// openArchive opens the archive named in config without validating the rest
// of the configuration, so history works without model credentials.
func openArchive() (*archive.Store, error) {
	path := v.GetString("archive.path")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no archive at %s: %w", path, err)
	}
	return archive.Open(path)
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "number of runs to list (0 = all)")

	historyExportCmd.Flags().String("format", archive.FormatYAML, "export format: yaml, json or html")
	historyExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
