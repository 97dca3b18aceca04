// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace owns the transient directories a run stages its
// intermediate images, page documents and page renders in.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/barcode-sheet/pkg/types"
)

// ErrUnsafeStaging is returned when a staging path would remove the working
// directory or one of the run's inputs.
var ErrUnsafeStaging = errors.New("unsafe staging path")

// Workspace holds the resolved staging paths for one run.
type Workspace struct {
	ImageDir  string
	DocDir    string
	RenderDir string
	// OutputPath is run-scoped: anything left under it by an earlier run is
	// removed during Setup.
	OutputPath string

	root      string
	protected []string
}

// New resolves the staging paths from settings relative to root. The
// template, the history database and any extra paths (the source PDF, an
// explicit image directory) are protected: Setup refuses to run if a
// staging path equals or contains one of them.
func New(root string, s types.Settings, protected ...string) *Workspace {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}
	w := &Workspace{
		ImageDir:   resolve(s.ImageSequenceDir),
		DocDir:     resolve(s.TempDocx),
		RenderDir:  resolve(s.TempPDF),
		OutputPath: resolve(s.OutputDocx),
		root:       filepath.Clean(root),
	}
	for _, p := range append([]string{s.InputDocx, s.HistoryDB}, protected...) {
		if p != "" {
			w.protected = append(w.protected, resolve(p))
		}
	}
	return w
}

func (w *Workspace) transient() []string {
	return []string{w.ImageDir, w.DocDir, w.RenderDir}
}

// Check verifies that removing the staging paths cannot touch the working
// directory, its parents, or a protected input, and that no staging
// directory is nested in another.
func (w *Workspace) Check() error {
	var errs []error
	named := []struct{ key, path string }{
		{"image_sequence_dir", w.ImageDir},
		{"temp_docx", w.DocDir},
		{"temp_pdf", w.RenderDir},
		{"output_docx", w.OutputPath},
	}
	for i, n := range named {
		if within(w.root, n.path) {
			errs = append(errs, fmt.Errorf("%w: %s %s is the working directory or one of its parents", ErrUnsafeStaging, n.key, n.path))
			continue
		}
		for _, p := range w.protected {
			if within(p, n.path) {
				errs = append(errs, fmt.Errorf("%w: %s %s would remove %s", ErrUnsafeStaging, n.key, n.path, p))
			}
		}
		for _, o := range named[i+1:] {
			if n.path != o.path && (within(n.path, o.path) || within(o.path, n.path)) {
				errs = append(errs, fmt.Errorf("%w: %s %s and %s %s are nested", ErrUnsafeStaging, n.key, n.path, o.key, o.path))
			}
		}
	}
	return errors.Join(errs...)
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	a, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	d, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(d, a)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Setup clears leftovers of a previous run, creates the three transient
// directories empty, and removes the run-scoped output path. Directories it
// created are removed again if a later step fails.
func (w *Workspace) Setup() (err error) {
	if err := w.Check(); err != nil {
		return err
	}
	var created []string
	defer func() {
		if err == nil {
			return
		}
		for _, dir := range created {
			if rerr := os.RemoveAll(dir); rerr != nil {
				err = errors.Join(err, fmt.Errorf("removing %s: %w", dir, rerr))
			}
		}
	}()
	for _, dir := range w.transient() {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clearing %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	if err := os.RemoveAll(w.OutputPath); err != nil {
		return fmt.Errorf("removing stale output %s: %w", w.OutputPath, err)
	}
	return nil
}

// Teardown removes the three transient directories. It attempts every
// directory and returns the joined errors. Nothing is removed if Check fails.
func (w *Workspace) Teardown() error {
	if err := w.Check(); err != nil {
		return err
	}
	var errs []error
	for _, dir := range w.transient() {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", dir, err))
		}
	}
	return errors.Join(errs...)
}

// DocPath is the staging path of page document p: {p}_{base}.
func (w *Workspace) DocPath(p int, base string) string {
	return filepath.Join(w.DocDir, fmt.Sprintf("%d_%s", p, base))
}

// RenderPath is the staging path of the PDF rendered from page document p.
func (w *Workspace) RenderPath(p int, base string) string {
	stem := base
	if ext := filepath.Ext(base); ext != "" {
		stem = base[:len(base)-len(ext)]
	}
	return filepath.Join(w.RenderDir, fmt.Sprintf("%d_%s.pdf", p, stem))
}
