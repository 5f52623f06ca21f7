// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-club/internal/publish"
	"github.com/pdiddy/journal-club/pkg/types"
)

var discussCmd = &cobra.Command{
	Use:   "discuss <arxiv-id>",
	Short: "Discuss a single paper",
	Long: `Discuss runs the student, postdoc and staff discussion of one paper and
its Japanese translation. The segments are printed to stdout, or posted to
the configured channel as a thread with --post.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscuss,
}

func init() {
	discussCmd.Flags().Bool("post", false, "post the discussion to the configured Slack channel")

	rootCmd.AddCommand(discussCmd)
}

func runDiscuss(cmd *cobra.Command, args []string) error {
	post, _ := cmd.Flags().GetBool("post")
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := wire(ctx, cfg, wireOptions{messenger: post})
	if err != nil {
		return err
	}
	defer a.close()

	ref, err := a.repo.Lookup(ctx, args[0])
	if err != nil {
		return err
	}

	// Resolve the channel before spending model calls.
	var pub *publish.Publisher
	if post {
		if pub, err = a.env.Publisher(ctx); err != nil {
			return err
		}
	}

	d, err := a.env.Discuss(ctx, ref.ID)
	if err != nil {
		return err
	}

	paper := types.InterestingPaper{
		ID:              ref.ID,
		Title:           ref.Title,
		Authors:         ref.Authors,
		PrimaryCategory: ref.PrimaryCategory,
		ReasonEN:        "Requested discussion.",
		ReasonJA:        "リクエストによるディスカッション。",
	}

	if pub == nil {
		fmt.Fprintln(os.Stdout, publish.Header(paper))
		for _, s := range publish.Segments(d) {
			fmt.Fprintf(os.Stdout, "\n%s\n", s)
		}
		return nil
	}

	var attachments []publish.Attachment
	if cfg.Slack.AttachTranscript {
		attachments = append(attachments, publish.Attachment{
			Filename: publish.TranscriptFilename(paper.ID),
			Title:    paper.Title,
			Content:  publish.Transcript(paper, d),
		})
	}
	thread, err := pub.Publish(ctx, publish.Header(paper), publish.Segments(d), attachments...)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Posted %s as thread %s\n", paper.ID, thread)
	return nil
}
