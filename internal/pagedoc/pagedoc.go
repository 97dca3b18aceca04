// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pagedoc builds one .docx page document per output page by cloning
// a template and placing barcode images into the cells of its grid table.
package pagedoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fumiama/go-docx"

	"github.com/pdiddy/barcode-sheet/internal/grid"
	"github.com/pdiddy/barcode-sheet/pkg/types"
)

// EMUPerInch converts inches to the English Metric Units used by DrawingML.
const EMUPerInch = 914400

// ErrNoGrid is returned when the template has no usable grid table.
var ErrNoGrid = errors.New("template has no grid table")

// Stager names the staging path of each finalized page document.
type Stager interface {
	DocPath(page int, base string) string
}

// Builder clones the template once per page and stages finished pages.
type Builder struct {
	template []byte
	widthEMU int64
	baseName string
	stager   Stager
}

// LoadTemplate reads the template document at path.
func LoadTemplate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}
	return data, nil
}

// NewBuilder validates the template and returns a Builder that scales every
// image to barcodeWidth inches and stages page p at stager.DocPath(p, baseName).
func NewBuilder(template []byte, barcodeWidth float64, baseName string, stager Stager) (*Builder, error) {
	if barcodeWidth <= 0 {
		return nil, fmt.Errorf("barcode width must be positive, got %v", barcodeWidth)
	}
	b := &Builder{
		template: template,
		widthEMU: int64(math.Round(barcodeWidth * EMUPerInch)),
		baseName: baseName,
		stager:   stager,
	}
	if _, _, err := b.clone(); err != nil {
		return nil, err
	}
	return b, nil
}

// clone parses a fresh copy of the template and returns it with its grid.
func (b *Builder) clone() (*docx.Docx, *docx.Table, error) {
	doc, err := docx.Parse(bytes.NewReader(b.template), int64(len(b.template)))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing template: %w", err)
	}
	table, err := findGrid(doc)
	if err != nil {
		return nil, nil, err
	}
	if table.TableProperties == nil {
		table.TableProperties = &docx.WTableProperties{}
	}
	table.Justification("center")
	return doc, table, nil
}

// findGrid returns the first table of the document body if it has at least
// grid.Rows rows of grid.Cols cells.
func findGrid(doc *docx.Docx) (*docx.Table, error) {
	for _, item := range doc.Document.Body.Items {
		table, ok := item.(*docx.Table)
		if !ok {
			continue
		}
		if len(table.TableRows) < grid.Rows {
			return nil, fmt.Errorf("%w: first table has %d row(s), need %d", ErrNoGrid, len(table.TableRows), grid.Rows)
		}
		for r := 0; r < grid.Rows; r++ {
			if n := len(table.TableRows[r].TableCells); n < grid.Cols {
				return nil, fmt.Errorf("%w: row %d has %d cell(s), need %d", ErrNoGrid, r, n, grid.Cols)
			}
		}
		return table, nil
	}
	return nil, ErrNoGrid
}

// PageAccumulator is the page under construction. Placing an image returns
// a new accumulator; crossing a page boundary replaces it with a fresh clone.
type PageAccumulator struct {
	index  int
	doc    *docx.Docx
	table  *docx.Table
	images []int
}

func (b *Builder) newPage(index int) (PageAccumulator, error) {
	doc, table, err := b.clone()
	if err != nil {
		return PageAccumulator{}, fmt.Errorf("starting page %d: %w", index, err)
	}
	return PageAccumulator{index: index, doc: doc, table: table}, nil
}

// place embeds img as a centered inline picture in the cell at slot.
func (acc PageAccumulator) place(img types.ImageUnit, slot types.GridSlot, widthEMU int64) (PageAccumulator, error) {
	if slot.Page != acc.index {
		return acc, fmt.Errorf("image %d belongs to page %d, accumulating page %d", img.Index, slot.Page, acc.index)
	}
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return acc, fmt.Errorf("reading image %d: %w", img.Index, err)
	}

	cell := acc.table.TableRows[slot.Row].TableCells[slot.Col]
	para := cell.AddParagraph().Justification("center")
	run, err := para.AddInlineDrawing(data)
	if err != nil {
		return acc, fmt.Errorf("embedding image %d at page %d row %d col %d: %w", img.Index, slot.Page, slot.Row, slot.Col, err)
	}
	for _, child := range run.Children {
		d, ok := child.(*docx.Drawing)
		if !ok || d.Inline == nil || d.Inline.Extent == nil || d.Inline.Extent.CX == 0 {
			continue
		}
		ext := d.Inline.Extent
		d.Inline.Size(widthEMU, widthEMU*ext.CY/ext.CX)
	}

	images := make([]int, len(acc.images), len(acc.images)+1)
	copy(images, acc.images)
	acc.images = append(images, img.Index)
	return acc, nil
}

// finalize writes the accumulated page to its staging path.
func (b *Builder) finalize(acc PageAccumulator) (types.StagedPage, error) {
	path := b.stager.DocPath(acc.index, b.baseName)
	f, err := os.Create(path)
	if err != nil {
		return types.StagedPage{}, fmt.Errorf("staging page %d: %w", acc.index, err)
	}
	if _, err := acc.doc.WriteTo(f); err != nil {
		f.Close()
		return types.StagedPage{}, fmt.Errorf("writing page %d to %s: %w", acc.index, path, err)
	}
	if err := f.Close(); err != nil {
		return types.StagedPage{}, fmt.Errorf("closing page %d: %w", acc.index, err)
	}
	return types.StagedPage{Index: acc.index, DocPath: path, Images: acc.images}, nil
}

// Build lays out images in sequence order and stages one document per page.
// A page is finalized when the next image opens a new page, and the last
// page (full or partial) is always finalized after the loop.
func (b *Builder) Build(images []types.ImageUnit, w io.Writer) ([]types.StagedPage, error) {
	layout, err := grid.Paginate(len(images))
	if err != nil {
		return nil, err
	}

	pages := make([]types.StagedPage, 0, layout.Pages)
	acc, err := b.newPage(0)
	if err != nil {
		return nil, err
	}
	for i, img := range images {
		slot := layout.Slots[i]
		if grid.IsPageStart(i) {
			staged, err := b.finalize(acc)
			if err != nil {
				return nil, err
			}
			pages = append(pages, staged)
			fmt.Fprintf(w, "staged:   page %d (%d image(s))\n", staged.Index, len(staged.Images))

			if acc, err = b.newPage(slot.Page); err != nil {
				return nil, err
			}
		}
		if acc, err = acc.place(img, slot, b.widthEMU); err != nil {
			return nil, err
		}
	}

	staged, err := b.finalize(acc)
	if err != nil {
		return nil, err
	}
	pages = append(pages, staged)
	fmt.Fprintf(w, "staged:   page %d (%d image(s))\n", staged.Index, len(staged.Images))

	if len(pages) != layout.Pages {
		return nil, fmt.Errorf("staged %d page(s), layout has %d", len(pages), layout.Pages)
	}
	return pages, nil
}
