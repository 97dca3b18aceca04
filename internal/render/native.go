// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/barcode-sheet/internal/grid"
	"github.com/pdiddy/barcode-sheet/internal/pagedoc"
)

// A4 page geometry in millimetres.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	marginMM     = 15.0
	mmPerInch    = 25.4
)

// Native lays out the pictures of a staged page on an A4 PDF without any
// external tool. Text and styling of the template are not reproduced.
type Native struct{}

// NewNative returns the pure-Go renderer.
func NewNative() *Native { return &Native{} }

func (*Native) Name() string { return "native" }

func (*Native) Ready(context.Context) error { return nil }

// Render centres each picture in its grid cell at the size recorded in the
// document. A page with no pictures still yields one blank page.
func (*Native) Render(ctx context.Context, src, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pics, err := pagedoc.ReadPictures(src)
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	cellW := (pageWidthMM - 2*marginMM) / grid.Cols
	cellH := (pageHeightMM - 2*marginMM) / grid.Rows
	for i, pic := range pics {
		_, format, err := image.DecodeConfig(bytes.NewReader(pic.Data))
		if err != nil {
			return fmt.Errorf("decoding picture at row %d col %d: %w", pic.Row, pic.Col, err)
		}
		w := float64(pic.WidthEMU) / pagedoc.EMUPerInch * mmPerInch
		h := float64(pic.HeightEMU) / pagedoc.EMUPerInch * mmPerInch
		if w > cellW {
			h, w = h*cellW/w, cellW
		}
		if h > cellH {
			w, h = w*cellH/h, cellH
		}
		x := marginMM + float64(pic.Col)*cellW + (cellW-w)/2
		y := marginMM + float64(pic.Row)*cellH + (cellH-h)/2

		name := fmt.Sprintf("pic%d", i)
		opts := fpdf.ImageOptions{ImageType: format}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(pic.Data))
		pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	}

	if err := pdf.OutputFileAndClose(dest); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
