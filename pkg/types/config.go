// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// RendererBackend identifies the tool that turns a page document into a PDF.
type RendererBackend string

const (
	RendererSoffice   RendererBackend = "soffice"
	RendererContainer RendererBackend = "container"
	RendererNative    RendererBackend = "native"
)

// Settings is the validated run configuration. The first seven fields mirror
// the keys of the legacy settings.json; the rest select and tune the
// external tools.
type Settings struct {
	// ImageSequenceDir stages the rasterized barcode images.
	ImageSequenceDir string `json:"image_sequence_dir" yaml:"image_sequence_dir" mapstructure:"image_sequence_dir"`

	// TempDocx stages one page document per output page.
	TempDocx string `json:"temp_docx" yaml:"temp_docx" mapstructure:"temp_docx"`

	// TempPDF stages one rendered PDF per output page.
	TempPDF string `json:"temp_pdf" yaml:"temp_pdf" mapstructure:"temp_pdf"`

	// OutputDocx is the base name of staged page documents
	// ({page}_{OutputDocx}). A stale path with this name is removed at setup.
	OutputDocx string `json:"output_docx" yaml:"output_docx" mapstructure:"output_docx"`

	// InputDocx is the template document; its first table is the 2x4 grid.
	InputDocx string `json:"input_docx" yaml:"input_docx" mapstructure:"input_docx"`

	// OutputPDF is the base name of the final artifact. Any extension is
	// dropped before the timestamp is appended.
	OutputPDF string `json:"output_pdf" yaml:"output_pdf" mapstructure:"output_pdf"`

	// BarcodeWidth is the printed width of each barcode, in inches.
	BarcodeWidth float64 `json:"barcode_width" yaml:"barcode_width" mapstructure:"barcode_width"`

	// Renderer selects the page renderer backend (default soffice).
	Renderer RendererBackend `json:"renderer" yaml:"renderer" mapstructure:"renderer"`

	// RendererImage is the container image for the container backend.
	RendererImage string `json:"renderer_image" yaml:"renderer_image" mapstructure:"renderer_image"`

	// SofficeBin is the LibreOffice binary for the soffice backend.
	SofficeBin string `json:"soffice_bin" yaml:"soffice_bin" mapstructure:"soffice_bin"`

	// RasterizerBin is the poppler pdftoppm binary used to rasterize input pages.
	RasterizerBin string `json:"rasterizer_bin" yaml:"rasterizer_bin" mapstructure:"rasterizer_bin"`

	// Zoom scales the 72 DPI page size during rasterization (default 4).
	Zoom float64 `json:"zoom" yaml:"zoom" mapstructure:"zoom"`

	// HistoryDB is the SQLite ledger of past runs.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`

	// ReadyAttempts bounds the renderer readiness poll (default 5).
	ReadyAttempts int `json:"ready_attempts" yaml:"ready_attempts" mapstructure:"ready_attempts"`
}

// Defaults for the optional settings.
const (
	DefaultRendererImage = "unoconv:latest"
	DefaultSofficeBin    = "soffice"
	DefaultRasterizerBin = "pdftoppm"
	DefaultZoom          = 4.0
	DefaultHistoryDB     = ".barcode-sheet/history.db"
	DefaultReadyAttempts = 5
)

// ApplyDefaults fills unset optional fields.
func (s *Settings) ApplyDefaults() {
	if s.Renderer == "" {
		s.Renderer = RendererSoffice
	}
	if s.RendererImage == "" {
		s.RendererImage = DefaultRendererImage
	}
	if s.SofficeBin == "" {
		s.SofficeBin = DefaultSofficeBin
	}
	if s.RasterizerBin == "" {
		s.RasterizerBin = DefaultRasterizerBin
	}
	if s.Zoom <= 0 {
		s.Zoom = DefaultZoom
	}
	if s.HistoryDB == "" {
		s.HistoryDB = DefaultHistoryDB
	}
	if s.ReadyAttempts <= 0 {
		s.ReadyAttempts = DefaultReadyAttempts
	}
}

// Validate reports every missing or malformed required setting in one error.
func (s Settings) Validate() error {
	var errs []error
	required := []struct {
		key, val string
	}{
		{"image_sequence_dir", s.ImageSequenceDir},
		{"temp_docx", s.TempDocx},
		{"temp_pdf", s.TempPDF},
		{"output_docx", s.OutputDocx},
		{"input_docx", s.InputDocx},
		{"output_pdf", s.OutputPDF},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			errs = append(errs, fmt.Errorf("setting %s is required", r.key))
		}
	}
	if s.BarcodeWidth <= 0 {
		errs = append(errs, fmt.Errorf("setting barcode_width must be positive, got %v", s.BarcodeWidth))
	}
	if strings.ContainsAny(s.OutputDocx, `/\`) {
		errs = append(errs, fmt.Errorf("setting output_docx must be a file name, got %q", s.OutputDocx))
	}
	switch s.Renderer {
	case "", RendererSoffice, RendererContainer, RendererNative:
	default:
		errs = append(errs, fmt.Errorf("unknown renderer %q: want soffice, container, or native", s.Renderer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// OutputStem returns OutputPDF without directory or extension.
func (s Settings) OutputStem() string {
	base := filepath.Base(s.OutputPDF)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}
