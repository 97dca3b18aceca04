// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// rasterPrefix is the file prefix pdftoppm writes pages under.
const rasterPrefix = "page"

// commandRunner abstracts process execution for testing.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Pdftoppm rasterizes PDFs with poppler's pdftoppm.
type Pdftoppm struct {
	bin string
	run commandRunner
}

// NewPdftoppm returns a Rasterizer that runs bin (usually "pdftoppm").
func NewPdftoppm(bin string) *Pdftoppm {
	return &Pdftoppm{bin: bin, run: osRunner{}}
}

// Rasterize writes one PNG per page into outDir and returns them in page order.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error) {
	args := []string{"-png", "-r", strconv.Itoa(dpi), pdfPath, filepath.Join(outDir, rasterPrefix)}
	if out, err := p.run.CombinedOutput(ctx, p.bin, args...); err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", p.bin, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", p.bin, err)
	}
	return Scan(outDir)
}
