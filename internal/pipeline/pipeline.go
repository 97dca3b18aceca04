// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one barcode sheet build: extract images from the
// source PDF, lay them out on template pages, render every page and join
// the renders into a timestamped artifact. The staging workspace brackets
// the whole run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/pdiddy/barcode-sheet/internal/concat"
	"github.com/pdiddy/barcode-sheet/internal/extract"
	"github.com/pdiddy/barcode-sheet/internal/grid"
	"github.com/pdiddy/barcode-sheet/internal/pagedoc"
	"github.com/pdiddy/barcode-sheet/internal/render"
	"github.com/pdiddy/barcode-sheet/internal/workspace"
	"github.com/pdiddy/barcode-sheet/pkg/types"
)

// TimestampLayout formats the suffix appended to the artifact name.
const TimestampLayout = "2006.01.02_15.04.05"

// Recorder persists the outcome of a run.
type Recorder interface {
	Record(ctx context.Context, rec types.RunRecord) (int64, error)
}

// Options select the input and optional outputs of one run.
type Options struct {
	// Root is the working directory. Relative settings paths and the
	// artifact are resolved against it.
	Root string

	// Source is the input PDF. Ignored when ImageDir is set.
	Source string

	// ImageDir, when set, supplies pre-rasterized images instead of
	// extracting them from Source.
	ImageDir string

	// Manifest writes a YAML layout manifest beside the artifact.
	Manifest bool

	// KeepStaging skips teardown so staged files can be inspected.
	KeepStaging bool
}

// Pipeline holds the collaborators of a run.
type Pipeline struct {
	settings   types.Settings
	rasterizer extract.Rasterizer
	renderer   render.Renderer
	recorder   Recorder
	out        io.Writer
	now        func() time.Time
}

// New returns a pipeline. recorder may be nil to skip the run ledger.
func New(s types.Settings, rasterizer extract.Rasterizer, renderer render.Renderer, recorder Recorder, w io.Writer) *Pipeline {
	return &Pipeline{
		settings:   s,
		rasterizer: rasterizer,
		renderer:   renderer,
		recorder:   recorder,
		out:        w,
		now:        time.Now,
	}
}

// ArtifactName is {output_pdf stem}{YYYY.MM.DD_HH.MM.SS}.pdf.
func ArtifactName(s types.Settings, at time.Time) string {
	return s.OutputStem() + at.Format(TimestampLayout) + ".pdf"
}

// Run executes the pipeline and returns the artifact it wrote. No staging
// directory is touched until the settings, template and input are known to
// be usable.
func (p *Pipeline) Run(ctx context.Context, opts Options) (artifact types.FinalArtifact, err error) {
	started := p.now()
	rec := types.RunRecord{
		Source:    opts.Source,
		Renderer:  p.renderer.Name(),
		StartedAt: started,
	}
	if opts.ImageDir != "" {
		rec.Source = opts.ImageDir
	}
	defer func() {
		p.record(ctx, rec, artifact, err)
	}()

	if err := p.settings.Validate(); err != nil {
		return artifact, err
	}

	ws := workspace.New(opts.Root, p.settings, opts.Source, opts.ImageDir)
	if err := ws.Check(); err != nil {
		return artifact, err
	}
	template, err := pagedoc.LoadTemplate(resolve(opts.Root, p.settings.InputDocx))
	if err != nil {
		return artifact, err
	}
	builder, err := pagedoc.NewBuilder(template, p.settings.BarcodeWidth, p.settings.OutputDocx, ws)
	if err != nil {
		return artifact, fmt.Errorf("template %s: %w", p.settings.InputDocx, err)
	}

	var preStaged []string
	if opts.ImageDir != "" {
		if preStaged, err = p.scanImageDir(opts.ImageDir); err != nil {
			return artifact, err
		}
	} else {
		if err := p.checkSource(opts.Source); err != nil {
			return artifact, err
		}
	}

	if err := ws.Setup(); err != nil {
		return artifact, fmt.Errorf("preparing workspace: %w", err)
	}
	if !opts.KeepStaging {
		defer func() {
			if terr := ws.Teardown(); terr != nil {
				err = errors.Join(err, fmt.Errorf("cleaning workspace: %w", terr))
			}
		}()
	}

	var images []types.ImageUnit
	if preStaged != nil {
		images, err = extract.Stage(preStaged, ws.ImageDir)
		if err == nil {
			fmt.Fprintf(p.out, "staged:   %d image(s) from %s\n", len(images), opts.ImageDir)
		}
	} else {
		images, err = extract.Extract(ctx, p.rasterizer, opts.Source, ws.ImageDir, p.settings.Zoom, p.out)
	}
	if err != nil {
		return artifact, err
	}
	rec.Images = len(images)
	if len(images) == 0 {
		return artifact, fmt.Errorf("%s: %w", rec.Source, grid.ErrNoImages)
	}

	pages, err := builder.Build(images, p.out)
	if err != nil {
		return artifact, err
	}
	rec.Pages = len(pages)

	units, err := p.renderPages(ctx, ws, pages)
	if err != nil {
		return artifact, err
	}

	generated := p.now()
	dest := filepath.Join(opts.Root, ArtifactName(p.settings, generated))
	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.Path
	}
	if err := concat.Concatenate(paths, dest); err != nil {
		return artifact, fmt.Errorf("writing artifact: %w", err)
	}

	artifact = types.FinalArtifact{Path: dest, Pages: len(units), Images: len(images), GeneratedAt: generated}
	if n, err := concat.PageCount(dest); err != nil {
		fmt.Fprintf(p.out, "warning:  counting pages of %s: %v\n", filepath.Base(dest), err)
	} else {
		if n != len(units) {
			fmt.Fprintf(p.out, "warning:  %d page render(s) produced %d page(s)\n", len(units), n)
		}
		artifact.Pages = n
	}
	fmt.Fprintf(p.out, "written:  %s (%d page(s), %d image(s))\n", filepath.Base(dest), artifact.Pages, artifact.Images)

	if opts.Manifest {
		path, err := WriteManifest(artifact, rec.Source, p.renderer.Name(), pages)
		if err != nil {
			return artifact, err
		}
		fmt.Fprintf(p.out, "manifest: %s\n", filepath.Base(path))
	}
	return artifact, nil
}

// checkSource rejects an input PDF with no pages before anything is staged.
// PDFs the parser cannot read are left to the rasterizer to judge.
func (p *Pipeline) checkSource(path string) error {
	if path == "" {
		return errors.New("no input pdf selected")
	}
	n, err := concat.PageCount(path)
	if err != nil {
		fmt.Fprintf(p.out, "warning:  %v\n", err)
		return nil
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", path, grid.ErrNoImages)
	}
	return nil
}

func (p *Pipeline) scanImageDir(dir string) ([]string, error) {
	paths, err := extract.Scan(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, grid.ErrNoImages)
	}
	return paths, nil
}

// renderPages renders the staged pages one at a time, in page order.
func (p *Pipeline) renderPages(ctx context.Context, ws *workspace.Workspace, pages []types.StagedPage) ([]types.PageRenderUnit, error) {
	if err := p.renderer.Ready(ctx); err != nil {
		return nil, fmt.Errorf("renderer %s not ready: %w", p.renderer.Name(), err)
	}
	fmt.Fprintf(p.out, "renderer: %s ready\n", p.renderer.Name())

	units := make([]types.PageRenderUnit, 0, len(pages))
	for _, page := range pages {
		dest := ws.RenderPath(page.Index, p.settings.OutputDocx)
		if err := p.renderer.Render(ctx, page.DocPath, dest); err != nil {
			return nil, &render.RenderError{Page: page.Index, Src: page.DocPath, Dest: dest, Err: err}
		}
		units = append(units, types.PageRenderUnit{Index: page.Index, Path: dest})
		fmt.Fprintf(p.out, "rendered: page %d\n", page.Index)
	}
	return units, nil
}

func (p *Pipeline) record(ctx context.Context, rec types.RunRecord, artifact types.FinalArtifact, err error) {
	if p.recorder == nil {
		return
	}
	rec.FinishedAt = p.now()
	rec.Output = artifact.Path
	switch {
	case err == nil:
		rec.Status = types.RunSucceeded
	case errors.Is(err, context.Canceled):
		rec.Status = types.RunInterrupted
		rec.Error = err.Error()
	default:
		rec.Status = types.RunFailed
		rec.Error = err.Error()
	}
	if _, rerr := p.recorder.Record(context.WithoutCancel(ctx), rec); rerr != nil {
		fmt.Fprintf(p.out, "warning:  %v\n", rerr)
	}
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
