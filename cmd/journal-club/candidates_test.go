// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/journal-club/pkg/types"
)

func sampleCandidates() []types.InterestingPaper {
	return []types.InterestingPaper{
		{
			ID: "2501.00001", Title: "Axion Dark Matter from Misalignment",
			Authors:  []string{"Alice Smith", "Bob Jones", "Carol White", "Dan Brown"},
			ReasonEN: "New production mechanism.", ReasonJA: "新しい生成機構。", PrimaryCategory: "hep-ph",
		},
		{
			ID: "2501.00002", Title: "Two Loop Higgs Self Coupling",
			Authors:  []string{"Eve Black"},
			ReasonEN: "Precision result.", ReasonJA: "精密計算。", PrimaryCategory: "hep-ph",
		},
	}
}

func TestCandidatesFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.yaml")
	require.NoError(t, writeCandidates(path, sampleCandidates()))

	got, err := readCandidates(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCandidates(), got)
}

func TestReadCandidates_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- arxiv_id: 2501.00001\n  title: Missing reasons\n"), 0o644))

	_, err := readCandidates(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid candidate 1")
}

func TestReadCandidates_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := readCandidates(path)
	require.NoError(t, err)
	assert.NotNil(t, got, "an empty file is an empty list, not a request to select")
	assert.Empty(t, got)
}

func TestFormatCandidates(t *testing.T) {
	var table bytes.Buffer
	require.NoError(t, formatCandidates(&table, sampleCandidates(), false))
	assert.Contains(t, table.String(), "2501.00001")
	assert.Contains(t, table.String(), "Alice Smith et al.")
	assert.Contains(t, table.String(), "2 candidates")

	var js bytes.Buffer
	require.NoError(t, formatCandidates(&js, sampleCandidates(), true))
	var decoded []types.InterestingPaper
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Len(t, decoded, 2)

	var empty bytes.Buffer
	require.NoError(t, formatCandidates(&empty, nil, false))
	assert.Equal(t, "No candidates today.\n", empty.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
