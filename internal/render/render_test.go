// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/barcode-sheet/internal/backoff"
	"github.com/pdiddy/barcode-sheet/internal/pagedoc"
	"github.com/pdiddy/barcode-sheet/internal/testsupport"
	"github.com/pdiddy/barcode-sheet/pkg/types"
)

func fastBackoff(t *testing.T) {
	t.Helper()
	orig := backoff.BaseDelay
	backoff.BaseDelay = time.Millisecond
	t.Cleanup(func() { backoff.BaseDelay = orig })
}

// fakeRunner records invocations and, for conversions, writes a PDF into
// the --outdir directory unless skipOutput is set.
type fakeRunner struct {
	calls      [][]string
	failFirst  int
	err        error
	output     string
	skipOutput bool
}

func (f *fakeRunner) CombinedOutput(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.failFirst > 0 {
		f.failFirst--
		return nil, errors.New("not started")
	}
	if f.err != nil {
		return []byte(f.output), f.err
	}
	if i := slices.Index(args, "--outdir"); i >= 0 && !f.skipOutput {
		src := args[len(args)-1]
		stem := filepath.Base(src[:len(src)-len(filepath.Ext(src))])
		if err := os.WriteFile(filepath.Join(args[i+1], stem+".pdf"), []byte("%PDF-1.4 fake"), 0o644); err != nil {
			return nil, err
		}
	}
	return []byte(f.output), nil
}

func TestSofficeRender(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "0_sheet.docx")
	dest := filepath.Join(dir, "0_sheet.pdf")
	require.NoError(t, os.WriteFile(src, []byte("docx"), 0o644))

	run := &fakeRunner{}
	s := &Soffice{bin: "soffice", run: run}
	require.NoError(t, s.Render(context.Background(), src, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	require.Len(t, run.calls, 1)
	assert.Equal(t, []string{"soffice", "--headless", "--convert-to", "pdf", "--outdir"}, run.calls[0][:5])
	assert.Equal(t, src, run.calls[0][6])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "scratch directory should be removed")
}

func TestSofficeRender_Failures(t *testing.T) {
	tests := []struct {
		name    string
		run     *fakeRunner
		wantErr error
		wantMsg string
	}{
		{
			name:    "no output",
			run:     &fakeRunner{skipOutput: true},
			wantErr: ErrNoOutput,
		},
		{
			name:    "process error",
			run:     &fakeRunner{err: errors.New("exit status 1"), output: "source file could not be loaded"},
			wantMsg: "source file could not be loaded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "0_sheet.pdf")
			s := &Soffice{bin: "soffice", run: tt.run}

			err := s.Render(context.Background(), filepath.Join(dir, "0_sheet.docx"), dest)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NoFileExists(t, dest)
		})
	}
}

func TestSofficeReady(t *testing.T) {
	fastBackoff(t)

	run := &fakeRunner{failFirst: 2}
	s := &Soffice{bin: "soffice", attempts: 5, run: run}
	require.NoError(t, s.Ready(context.Background()))
	assert.Len(t, run.calls, 3)
	assert.Equal(t, []string{"soffice", "--version"}, run.calls[0])

	run = &fakeRunner{failFirst: 10}
	s = &Soffice{bin: "soffice", attempts: 3, run: run}
	err := s.Ready(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempt(s)")
	assert.Len(t, run.calls, 3)
}

// fakeRuntime implements container.Runtime for testing.
type fakeRuntime struct {
	missing  int
	output   string
	runErr   error
	gotStdin string
	gotImage string
}

func (f *fakeRuntime) Name() string                   { return "docker" }
func (f *fakeRuntime) Available(context.Context) bool { return true }

func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if f.missing > 0 {
		f.missing--
		return fmt.Errorf("image %s not found", image)
	}
	return nil
}

func (f *fakeRuntime) Run(_ context.Context, image string, _ []string, stdin io.Reader, stdout io.Writer) error {
	f.gotImage = image
	data, _ := io.ReadAll(stdin)
	f.gotStdin = string(data)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestContainerRender(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "0_sheet.docx")
	require.NoError(t, os.WriteFile(src, []byte("docx bytes"), 0o644))

	tests := []struct {
		name    string
		rt      *fakeRuntime
		wantErr error
		wantOut string
	}{
		{name: "success", rt: &fakeRuntime{output: "%PDF-1.7"}, wantOut: "%PDF-1.7"},
		{name: "empty output", rt: &fakeRuntime{}, wantErr: ErrNoOutput},
		{name: "run error", rt: &fakeRuntime{runErr: errors.New("container crashed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "0_sheet.pdf")
			c := NewContainer(tt.rt, "unoconv:latest", 1)

			err := c.Render(context.Background(), src, dest)
			assert.Equal(t, "docx bytes", tt.rt.gotStdin)
			assert.Equal(t, "unoconv:latest", tt.rt.gotImage)
			if tt.wantOut == "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.NoFileExists(t, dest)
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, string(data))
		})
	}
}

func TestContainerReady(t *testing.T) {
	fastBackoff(t)

	c := NewContainer(&fakeRuntime{missing: 1}, "unoconv:latest", 3)
	assert.NoError(t, c.Ready(context.Background()))
	assert.Equal(t, "container:docker", c.Name())

	c = NewContainer(&fakeRuntime{missing: 5}, "unoconv:latest", 2)
	assert.Error(t, c.Ready(context.Background()))
}

func stagePage(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	images := make([]types.ImageUnit, n)
	for i := range images {
		path := filepath.Join(dir, fmt.Sprintf("barcode%d.png", i))
		testsupport.WritePNG(t, path, 60, 30, uint8(i+1))
		images[i] = types.ImageUnit{Index: i, Path: path}
	}
	b, err := pagedoc.NewBuilder(testsupport.TemplateDocx(t, 4, 2), 1.2, "sheet.docx", docDir(dir))
	require.NoError(t, err)
	pages, err := b.Build(images, io.Discard)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	return pages[0].DocPath
}

type docDir string

func (d docDir) DocPath(page int, base string) string {
	return filepath.Join(string(d), fmt.Sprintf("%d_%s", page, base))
}

func TestNativeRender(t *testing.T) {
	for _, n := range []int{1, 5, 8} {
		t.Run(fmt.Sprintf("%d pictures", n), func(t *testing.T) {
			src := stagePage(t, n)
			dest := filepath.Join(t.TempDir(), "0_sheet.pdf")

			r := NewNative()
			require.NoError(t, r.Ready(context.Background()))
			require.NoError(t, r.Render(context.Background(), src, dest))

			pages, err := api.PageCountFile(dest)
			require.NoError(t, err)
			assert.Equal(t, 1, pages)
		})
	}
}

func TestNativeRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewNative().Render(ctx, stagePage(t, 1), filepath.Join(t.TempDir(), "out.pdf"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderError(t *testing.T) {
	err := fmt.Errorf("run: %w", &RenderError{Page: 3, Src: "3_sheet.docx", Dest: "3_sheet.pdf", Err: ErrNoOutput})

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 3, re.Page)
	assert.ErrorIs(t, err, ErrNoOutput)
	assert.Contains(t, err.Error(), "page 3")
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend  types.RendererBackend
		wantName string
		wantErr  bool
	}{
		{backend: types.RendererSoffice, wantName: "soffice"},
		{backend: types.RendererNative, wantName: "native"},
		{backend: "pandoc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			s := types.Settings{Renderer: tt.backend}
			s.ApplyDefaults()
			s.Renderer = tt.backend

			r, err := New(context.Background(), s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, r.Name())
		})
	}
}
