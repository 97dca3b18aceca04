//go:build mage

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fumiama/go-docx"
	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/barcode"
)

const sampleDir = "sample"

// Sample writes a settings.json, a 2x4 grid template and a ten-page source
// PDF of Code128 labels into sample/ so a full run can be tried with
// `cd sample && ../bin/barcode-sheet build labels.pdf`.
func Sample() error {
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}

	settings := map[string]any{
		"image_sequence_dir": "images",
		"temp_docx":          "temp_docx",
		"temp_pdf":           "temp_pdf",
		"output_docx":        "output.docx",
		"input_docx":         "template.docx",
		"output_pdf":         "output",
		"barcode_width":      1.6,
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(sampleDir, "settings.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}

	doc := docx.New().WithDefaultTheme().WithA4Page()
	doc.AddParagraph().AddText("Barcodes")
	doc.AddTable(4, 2, 9000, nil)
	f, err := os.Create(filepath.Join(sampleDir, "template.docx"))
	if err != nil {
		return fmt.Errorf("creating template: %w", err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing template: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	pdf := fpdf.New("L", "mm", "A6", "")
	pdf.SetFont("Courier", "", 12)
	for i := 1; i <= 10; i++ {
		code := fmt.Sprintf("SKU-%06d", i)
		pdf.AddPage()
		key := barcode.RegisterCode128(pdf, code)
		barcode.Barcode(pdf, key, 14, 20, 120, 50, false)
		pdf.SetXY(14, 74)
		pdf.CellFormat(120, 8, code, "", 0, "C", false, 0, "")
	}
	if err := pdf.OutputFileAndClose(filepath.Join(sampleDir, "labels.pdf")); err != nil {
		return fmt.Errorf("writing source pdf: %w", err)
	}

	fmt.Printf("Sample written to %s/\n", sampleDir)
	return nil
}
