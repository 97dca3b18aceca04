// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testsupport builds the documents, images and PDFs that pipeline
// tests stage. Helpers fail the test on error to keep call sites short.
package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/go-pdf/fpdf"
)

// TemplateDocx returns a .docx with a heading paragraph followed by a
// rows x cols table, the shape of a barcode sheet template.
func TemplateDocx(t *testing.T, rows, cols int) []byte {
	t.Helper()

	doc := docx.New().WithDefaultTheme().WithA4Page()
	doc.AddParagraph().AddText("Barcodes")
	doc.AddTable(rows, cols, 9000, nil)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("testsupport: write template: %v", err)
	}
	return buf.Bytes()
}

// WriteTemplate writes TemplateDocx(4, 2) to dir/name and returns its path.
func WriteTemplate(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, TemplateDocx(t, 4, 2), 0o644); err != nil {
		t.Fatalf("testsupport: write template: %v", err)
	}
	return path
}

// WritePNG writes a w x h opaque PNG whose top-left pixel has red = marker,
// so tests can tell images apart after they travel through a document.
func WritePNG(t *testing.T, path string, w, h int, marker uint8) {
	t.Helper()
	if err := os.WriteFile(path, PNG(t, w, h, marker), 0o644); err != nil {
		t.Fatalf("testsupport: write png: %v", err)
	}
}

// PNG encodes the image WritePNG writes.
func PNG(t *testing.T, w, h int, marker uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	img.Set(0, 0, color.NRGBA{R: marker, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("testsupport: encode png: %v", err)
	}
	return buf.Bytes()
}

// Marker returns the red channel of the top-left pixel of a PNG.
func Marker(t *testing.T, data []byte) uint8 {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("testsupport: decode png: %v", err)
	}
	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return uint8(r >> 8)
}

// WritePDF writes a PDF with one page per label to path.
func WritePDF(t *testing.T, path string, labels ...string) {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for _, label := range labels {
		pdf.AddPage()
		pdf.Cell(40, 10, label)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("testsupport: write pdf: %v", err)
	}
}
