// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/barcode-sheet/internal/backoff"
	"github.com/pdiddy/barcode-sheet/internal/container"
)

// Container renders by piping the page document through a conversion image
// that reads a document on stdin and writes a PDF on stdout.
type Container struct {
	runtime  container.Runtime
	image    string
	args     []string
	attempts int
}

// NewContainer returns a renderer that runs image on rt.
func NewContainer(rt container.Runtime, image string, attempts int) *Container {
	return &Container{runtime: rt, image: image, attempts: attempts}
}

func (c *Container) Name() string { return "container:" + c.runtime.Name() }

// Ready polls until image is present in the runtime's local store.
func (c *Container) Ready(ctx context.Context) error {
	return backoff.Poll(ctx, c.attempts, func(ctx context.Context) error {
		return c.runtime.ImageExists(ctx, c.image)
	})
}

func (c *Container) Render(ctx context.Context, src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening page document %s: %w", src, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, c.args, f, &out); err != nil {
		return err
	}
	if out.Len() == 0 {
		return fmt.Errorf("%w: %s returned an empty stream", ErrNoOutput, c.image)
	}
	if err := os.WriteFile(dest, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
