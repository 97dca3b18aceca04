// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns staged page documents into single-page PDFs. Three
// backends are available: a local LibreOffice install, a conversion
// container run through docker or podman, and a pure-Go layout of the
// page's pictures.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/barcode-sheet/internal/container"
	"github.com/pdiddy/barcode-sheet/pkg/types"
)

// ErrNoOutput is returned when a renderer exits cleanly but leaves no PDF.
var ErrNoOutput = errors.New("renderer produced no output")

// Renderer converts one page document into a PDF. Calls are sequential;
// Render is never retried.
type Renderer interface {
	// Name identifies the backend in status lines and the run ledger.
	Name() string

	// Ready blocks until the backend can accept work, or fails after a
	// bounded number of probes.
	Ready(ctx context.Context) error

	// Render reads the document at src and writes a PDF to dest.
	Render(ctx context.Context, src, dest string) error
}

// RenderError names the page whose render failed.
type RenderError struct {
	Page int
	Src  string
	Dest string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering page %d (%s -> %s): %v", e.Page, e.Src, e.Dest, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// New returns the backend selected by s.Renderer.
func New(ctx context.Context, s types.Settings) (Renderer, error) {
	switch s.Renderer {
	case types.RendererSoffice, "":
		return NewSoffice(s.SofficeBin, s.ReadyAttempts), nil
	case types.RendererContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewContainer(rt, s.RendererImage, s.ReadyAttempts), nil
	case types.RendererNative:
		return NewNative(), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", s.Renderer)
	}
}
