//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
)

const imageMarkitdown = "markitdown:latest"

// markitdownContainerfile builds an image whose entrypoint converts the PDF
// on stdin to Markdown on stdout.
const markitdownContainerfile = `FROM python:3.12-slim
RUN pip install --no-cache-dir 'markitdown[pdf]'
ENTRYPOINT ["markitdown"]
`

// containerRuntime returns docker when it answers, else podman.
func containerRuntime() (string, error) {
	for _, bin := range []string{"docker", "podman"} {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		if err := sh.Run(bin, "info"); err == nil {
			return bin, nil
		}
	}
	return "", fmt.Errorf("neither docker nor podman is available")
}

// Markitdown builds the markitdown:latest image used by the markitdown
// full-text backend.
func Markitdown() error {
	rt, err := containerRuntime()
	if err != nil {
		return err
	}
	cmd := exec.Command(rt, "build", "-t", imageMarkitdown, "-")
	cmd.Stdin = strings.NewReader(markitdownContainerfile)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s build: %w", rt, err)
	}
	fmt.Printf("Built %s with %s\n", imageMarkitdown, rt)
	return nil
}
