// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-club/internal/publish"
	"github.com/pdiddy/journal-club/pkg/types"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick today's interesting papers without discussing them",
	Long: `Select fetches today's listing for the category and asks the selector
model for the interesting papers. Nothing is posted. Use --out to save the
list for "journal-club run --candidates".`,
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().Bool("json", false, "output candidates as JSON")
	selectCmd.Flags().String("out", "", "write candidates to this YAML file")

	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out, _ := cmd.Flags().GetString("out")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Selection reads only the listing.
	cfg.Repository.FullText = types.FullTextAbstract
	a, err := wire(cmd.Context(), cfg, wireOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	sel, err := a.env.Selector()
	if err != nil {
		return err
	}
	papers, err := sel.Select(cmd.Context(), cfg.Repository.Category)
	if err != nil {
		return err
	}

	if out != "" {
		if err := writeCandidates(out, papers); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d candidates to %s\n", len(papers), out)
	}
	return formatCandidates(os.Stdout, papers, jsonOutput)
}

func formatCandidates(w io.Writer, papers []types.InterestingPaper, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if papers == nil {
			papers = []types.InterestingPaper{}
		}
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Fprintln(w, "No candidates today.")
		return nil
	}

	fmt.Fprintf(w, "%-3s  %-12s  %-18s  %-50s  %s\n", "#", "arXiv", "Category", "Title", "Authors")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for i, p := range papers {
		fmt.Fprintf(w, "%-3d  %-12s  %-18s  %-50s  %s\n",
			i+1, p.ID, p.PrimaryCategory, truncate(p.Title, 50), publish.FormatAuthors(p.Authors))
	}
	fmt.Fprintf(w, "\n%d candidates\n", len(papers))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
