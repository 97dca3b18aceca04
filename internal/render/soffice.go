// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdiddy/barcode-sheet/internal/backoff"
)

// commandRunner abstracts process execution for testing.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Soffice renders through a headless LibreOffice.
type Soffice struct {
	bin      string
	attempts int
	run      commandRunner
}

// NewSoffice returns a renderer that runs bin (usually "soffice"). Ready
// probes the binary at most attempts times.
func NewSoffice(bin string, attempts int) *Soffice {
	return &Soffice{bin: bin, attempts: attempts, run: osRunner{}}
}

func (s *Soffice) Name() string { return "soffice" }

// Ready polls `soffice --version` until it answers.
func (s *Soffice) Ready(ctx context.Context) error {
	err := backoff.Poll(ctx, s.attempts, func(ctx context.Context) error {
		_, err := s.run.CombinedOutput(ctx, s.bin, "--version")
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", s.bin, err)
	}
	return nil
}

// Render converts src into a scratch directory next to dest and moves the
// result onto dest.
func (s *Soffice) Render(ctx context.Context, src, dest string) error {
	tmp, err := os.MkdirTemp(filepath.Dir(dest), ".soffice-*")
	if err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	args := []string{"--headless", "--convert-to", "pdf", "--outdir", tmp, src}
	if out, err := s.run.CombinedOutput(ctx, s.bin, args...); err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", s.bin, err, msg)
		}
		return fmt.Errorf("%s: %w", s.bin, err)
	}

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	produced := filepath.Join(tmp, stem+".pdf")
	info, err := os.Stat(produced)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0) {
		return fmt.Errorf("%w: expected %s", ErrNoOutput, produced)
	}
	if err != nil {
		return fmt.Errorf("checking %s: %w", produced, err)
	}
	if err := os.Rename(produced, dest); err != nil {
		return fmt.Errorf("moving render to %s: %w", dest, err)
	}
	return nil
}
