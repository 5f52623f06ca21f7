// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns a downloaded PDF into plain text or Markdown for the
// discussion agents. Backends are markitdown (run in a container) and
// pdftotext (run on the host).
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pdiddy/journal-club/internal/container"
	"github.com/pdiddy/journal-club/pkg/types"
)

// Converter transforms a PDF file into text.
type Converter interface {
	// Convert reads the PDF at pdfPath and returns its text content.
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// New returns the converter for backend. The abstract backend needs no
// converter and yields nil.
func New(ctx context.Context, backend types.FullTextBackend) (Converter, error) {
	switch backend {
	case types.FullTextAbstract:
		return nil, nil
	case types.FullTextPdftotext:
		return NewPdftotext()
	case types.FullTextMarkitdown, "":
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewMarkitdown(ctx, rt)
	default:
		return nil, fmt.Errorf("unknown full-text backend %q", backend)
	}
}

// Truncate cuts text to at most limit runes, marking the cut. A limit of zero
// or less leaves text unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "\n\n[... truncated ...]"
}

// Host command hooks, swapped in tests.
var (
	lookPath   = exec.LookPath
	runCommand = func(ctx context.Context, stdout io.Writer, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = stdout
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("%w: %s", err, msg)
			}
			return err
		}
		return nil
	}
)

const binPdftotext = "pdftotext"

// PdftotextConverter shells out to poppler's pdftotext.
type PdftotextConverter struct {
	bin string
}

// NewPdftotext verifies pdftotext is on PATH.
func NewPdftotext() (*PdftotextConverter, error) {
	bin, err := lookPath(binPdftotext)
	if err != nil {
		return nil, fmt.Errorf("%s not available: %w", binPdftotext, err)
	}
	return &PdftotextConverter{bin: bin}, nil
}

// Convert runs pdftotext in layout mode with output on stdout.
func (p *PdftotextConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	var out bytes.Buffer
	if err := runCommand(ctx, &out, p.bin, "-layout", "-enc", "UTF-8", pdfPath, "-"); err != nil {
		return "", fmt.Errorf("converting %s with pdftotext: %w", pdfPath, err)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("pdftotext produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}
