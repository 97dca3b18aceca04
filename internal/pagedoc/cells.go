// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pagedoc

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/pdiddy/barcode-sheet/internal/grid"
)

// Picture is an inline image found in a grid cell of a staged page.
type Picture struct {
	Row, Col  int
	Data      []byte
	WidthEMU  int64
	HeightEMU int64
}

// ReadPictures parses the page document at path and returns the inline
// pictures of its grid table in cell order.
func ReadPictures(path string) ([]Picture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page document: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat page document: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parsing page document %s: %w", path, err)
	}
	table, err := findGrid(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var pics []Picture
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			for _, inline := range cellInlines(table.TableRows[r].TableCells[c]) {
				data, err := inlineData(doc, inline)
				if err != nil {
					return nil, fmt.Errorf("%s row %d col %d: %w", path, r, c, err)
				}
				pic := Picture{Row: r, Col: c, Data: data}
				if inline.Extent != nil {
					pic.WidthEMU, pic.HeightEMU = inline.Extent.CX, inline.Extent.CY
				}
				pics = append(pics, pic)
			}
		}
	}
	return pics, nil
}

func cellInlines(cell *docx.WTableCell) []*docx.WPInline {
	var out []*docx.WPInline
	for _, p := range cell.Paragraphs {
		for _, child := range p.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if d, ok := rc.(*docx.Drawing); ok && d.Inline != nil {
					out = append(out, d.Inline)
				}
			}
		}
	}
	return out
}

func inlineData(doc *docx.Docx, inline *docx.WPInline) ([]byte, error) {
	g := inline.Graphic
	if g == nil || g.GraphicData == nil || g.GraphicData.Pic == nil || g.GraphicData.Pic.BlipFill == nil {
		return nil, fmt.Errorf("drawing has no picture")
	}
	target, err := doc.ReferTarget(g.GraphicData.Pic.BlipFill.Blip.Embed)
	if err != nil {
		return nil, fmt.Errorf("resolving picture relation: %w", err)
	}
	m := doc.Media(strings.TrimPrefix(target, "media/"))
	if m == nil {
		return nil, fmt.Errorf("picture media %s missing", target)
	}
	return m.Data, nil
}
