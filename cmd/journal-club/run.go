// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/journal-club/internal/pipeline"
	"github.com/pdiddy/journal-club/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Select today's papers, discuss them and post the threads",
	Long: `Run resolves the Slack channel, asks the selector for today's interesting
papers, and discusses and posts them one at a time. A paper that fails is
reported in the channel with a short notice and the run continues.

Use --candidates to replay a list written by "journal-club select --out"
instead of selecting, and --dry-run to print the posts instead of sending
them to Slack.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("candidates", "", "YAML file of candidates to discuss instead of selecting")
	runCmd.Flags().Int("max-papers", 0, "discuss at most this many candidates (0 = all)")
	runCmd.Flags().Bool("dry-run", false, "print posts to stdout instead of sending them to Slack")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	candidatesFile, _ := cmd.Flags().GetString("candidates")
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var opts pipeline.Options
	opts.MaxPapers = maxPapers
	if candidatesFile != "" {
		opts.Candidates, err = readCandidates(candidatesFile)
		if err != nil {
			return err
		}
	}

	wo := wireOptions{messenger: true, archive: !dryRun}
	if dryRun {
		wo.console = os.Stdout
	}
	a, err := wire(cmd.Context(), cfg, wo)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.env.RunDaily(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("run %s aborted: %w", report.RunID, err)
	}

	fmt.Fprintf(os.Stderr, "run %s: %d published, %d failed\n",
		report.RunID, report.Summary.Published, report.Summary.Failed)
	if report.Summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed", report.Summary.Failed)
	}
	return nil
}

var candidateValidate = validator.New(validator.WithRequiredStructEnabled())

// readCandidates loads a candidate list written by the select command.
func readCandidates(path string) ([]types.InterestingPaper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}
	var papers []types.InterestingPaper
	if err := yaml.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parsing candidates %s: %w", path, err)
	}
	if papers == nil {
		papers = []types.InterestingPaper{}
	}
	for i, p := range papers {
		if err := candidateValidate.Struct(p); err != nil {
			return nil, fmt.Errorf("invalid candidate %d in %s: %w", i+1, path, err)
		}
	}
	return papers, nil
}

// writeCandidates stores papers as YAML for a later run --candidates.
func writeCandidates(path string, papers []types.InterestingPaper) error {
	if papers == nil {
		papers = []types.InterestingPaper{}
	}
	data, err := yaml.Marshal(papers)
	if err != nil {
		return fmt.Errorf("marshaling candidates: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
