// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract produces the ordered barcode image sequence of a run:
// each page of the source PDF is rasterized, turned upright for the label
// grid, and staged as barcode{N}.png.
package extract

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"

	"github.com/pdiddy/barcode-sheet/pkg/types"
)

const (
	// rawDir holds rasterizer output before orientation.
	rawDir = "raw"
	// baseDPI is the PDF user space resolution.
	baseDPI = 72
)

// Rasterizer renders every page of a PDF to an image file in outDir and
// returns the image paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error)
}

// StagedName is the file name of image index i in the image staging directory.
func StagedName(i int) string {
	return fmt.Sprintf("barcode%d.png", i)
}

// DPI converts a zoom factor over 72 DPI to a whole DPI value.
func DPI(zoom float64) int {
	if zoom <= 0 {
		zoom = types.DefaultZoom
	}
	return int(math.Round(baseDPI * zoom))
}

// Extract rasterizes pdfPath with r, orients every page image, and stages
// the results in imageDir. The returned units are ordered by page.
func Extract(ctx context.Context, r Rasterizer, pdfPath, imageDir string, zoom float64, w io.Writer) ([]types.ImageUnit, error) {
	tmp := filepath.Join(imageDir, rawDir)
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return nil, fmt.Errorf("creating raster directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	pages, err := r.Rasterize(ctx, pdfPath, tmp, DPI(zoom))
	if err != nil {
		return nil, fmt.Errorf("rasterizing %s: %w", pdfPath, err)
	}

	units := make([]types.ImageUnit, 0, len(pages))
	for i, page := range pages {
		dst := filepath.Join(imageDir, StagedName(i))
		if err := Orient(page, dst); err != nil {
			return nil, fmt.Errorf("staging page %d of %s: %w", i+1, filepath.Base(pdfPath), err)
		}
		units = append(units, types.ImageUnit{Index: i, Path: dst})
	}
	fmt.Fprintf(w, "extracted: %d image(s) from %s\n", len(units), filepath.Base(pdfPath))
	return units, nil
}

// Orient rotates the image at src a quarter turn counter-clockwise and
// writes it to dst as PNG. Barcode label PDFs are laid out sideways; this
// puts the bars upright in the grid.
func Orient(src, dst string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", src, err)
	}
	if err := imaging.Save(imaging.Rotate90(img), dst); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

// imageExts lists the raster formats a staged image sequence may contain.
var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// Scan lists the raster images in dir ordered by the number at the end of
// their file name (barcode2 before barcode10), then by name. Images without
// a trailing number sort last.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading image directory %s: %w", dir, err)
	}

	type entry struct {
		name string
		num  int
		ok   bool
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		num, ok := trailingNumber(e.Name())
		found = append(found, entry{name: e.Name(), num: num, ok: ok})
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok && a.num != b.num {
			return a.num < b.num
		}
		return a.name < b.name
	})

	paths := make([]string, len(found))
	for i, e := range found {
		paths[i] = filepath.Join(dir, e.name)
	}
	return paths, nil
}

// trailingNumber parses the digits at the end of a file stem
// ("page-07.png" -> 7).
func trailingNumber(name string) (int, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	end := len(stem)
	start := end
	for start > 0 && unicode.IsDigit(rune(stem[start-1])) {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(stem[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Stage copies an existing image sequence into imageDir under the staged
// naming scheme, preserving order.
func Stage(paths []string, imageDir string) ([]types.ImageUnit, error) {
	units := make([]types.ImageUnit, 0, len(paths))
	for i, src := range paths {
		dst := filepath.Join(imageDir, StagedName(i))
		if strings.EqualFold(filepath.Ext(src), ".png") {
			if err := copyFile(src, dst); err != nil {
				return nil, err
			}
		} else {
			img, err := imaging.Open(src)
			if err != nil {
				return nil, fmt.Errorf("decoding %s: %w", src, err)
			}
			if err := imaging.Save(img, dst); err != nil {
				return nil, fmt.Errorf("writing %s: %w", dst, err)
			}
		}
		units = append(units, types.ImageUnit{Index: i, Path: dst})
	}
	return units, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
