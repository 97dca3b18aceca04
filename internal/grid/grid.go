// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grid assigns images to cells of fixed-capacity output pages.
// Cells fill row-major within a page: column fastest, then row, then page.
package grid

import (
	"errors"
	"fmt"

	"github.com/pdiddy/barcode-sheet/pkg/types"
)

const (
	// Cols is the number of cells per grid row.
	Cols = 2
	// Rows is the number of grid rows per page.
	Rows = 4
	// Capacity is the number of cells per page.
	Capacity = Cols * Rows
)

// ErrNoImages is returned when a run has nothing to lay out.
var ErrNoImages = errors.New("no images found")

// Assign returns the slot of the image at index i (0-based).
func Assign(i int) types.GridSlot {
	within := i % Capacity
	return types.GridSlot{
		Page: i / Capacity,
		Row:  within / Cols,
		Col:  within % Cols,
	}
}

// IsPageStart reports whether image i opens a new page after a previous
// one, i.e. image i-1 filled the last cell of its page.
func IsPageStart(i int) bool {
	return i > 0 && i%Capacity == 0
}

// Overflow reports whether n images leave the last page partially filled.
func Overflow(n int) bool {
	return n%Capacity != 0
}

// PageCount returns ceil(n / Capacity).
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + Capacity - 1) / Capacity
}

// Layout is the complete slot assignment for a run.
type Layout struct {
	Slots    []types.GridSlot
	Pages    int
	Overflow bool
}

// PageImages returns the image indices placed on page p, in cell order.
func (l Layout) PageImages(p int) []int {
	if p < 0 || p >= l.Pages {
		return nil
	}
	start := p * Capacity
	end := start + Capacity
	if end > len(l.Slots) {
		end = len(l.Slots)
	}
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

// Paginate computes the layout for n images. n == 0 is ErrNoImages.
func Paginate(n int) (Layout, error) {
	if n == 0 {
		return Layout{}, ErrNoImages
	}
	if n < 0 {
		return Layout{}, fmt.Errorf("invalid image count %d", n)
	}
	slots := make([]types.GridSlot, n)
	for i := range slots {
		slots[i] = Assign(i)
	}
	return Layout{
		Slots:    slots,
		Pages:    PageCount(n),
		Overflow: Overflow(n),
	}, nil
}
