//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// DryRun builds the CLI and runs today's journal club, printing the posts
// instead of sending them to Slack.
func DryRun() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "run", "--dry-run", "--max-papers", "2")
}

// Select builds the CLI and writes today's candidates to var/candidates.yaml.
func Select() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "select", "--out", filepath.Join("var", "candidates.yaml"))
}
