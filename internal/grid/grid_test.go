// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/barcode-sheet/pkg/types"
)

func TestAssign(t *testing.T) {
	tests := []struct {
		i    int
		want types.GridSlot
	}{
		{0, types.GridSlot{Page: 0, Row: 0, Col: 0}},
		{1, types.GridSlot{Page: 0, Row: 0, Col: 1}},
		{2, types.GridSlot{Page: 0, Row: 1, Col: 0}},
		{7, types.GridSlot{Page: 0, Row: 3, Col: 1}},
		{8, types.GridSlot{Page: 1, Row: 0, Col: 0}},
		{13, types.GridSlot{Page: 1, Row: 2, Col: 1}},
		{16, types.GridSlot{Page: 2, Row: 0, Col: 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Assign(tt.i), "Assign(%d)", tt.i)
	}
}

func TestPaginate_Properties(t *testing.T) {
	for n := 1; n <= 50; n++ {
		layout, err := Paginate(n)
		require.NoError(t, err)

		assert.Equal(t, (n+7)/8, layout.Pages, "n=%d", n)
		assert.Len(t, layout.Slots, n)
		assert.Equal(t, n%8 != 0, layout.Overflow, "n=%d", n)

		seen := make(map[types.GridSlot]bool, n)
		for i, s := range layout.Slots {
			require.False(t, seen[s], "slot %+v assigned twice (n=%d)", s, n)
			seen[s] = true
			assert.True(t, s.Row >= 0 && s.Row < Rows, "row out of range: %+v", s)
			assert.True(t, s.Col >= 0 && s.Col < Cols, "col out of range: %+v", s)
			if i == 0 {
				continue
			}
			prev := layout.Slots[i-1]
			prevKey := (prev.Page*Rows+prev.Row)*Cols + prev.Col
			key := (s.Page*Rows+s.Row)*Cols + s.Col
			assert.Equal(t, prevKey+1, key, "slots must fill row-major (n=%d, i=%d)", n, i)
		}

		total := 0
		for p := 0; p < layout.Pages; p++ {
			total += len(layout.PageImages(p))
		}
		assert.Equal(t, n, total, "n=%d", n)
	}
}

func TestPaginate_Boundaries(t *testing.T) {
	eight, err := Paginate(8)
	require.NoError(t, err)
	assert.Equal(t, 1, eight.Pages)
	assert.False(t, eight.Overflow)

	nine, err := Paginate(9)
	require.NoError(t, err)
	assert.Equal(t, 2, nine.Pages)
	assert.True(t, nine.Overflow)
	if diff := cmp.Diff([]int{8}, nine.PageImages(1)); diff != "" {
		t.Errorf("second page images mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, nine.PageImages(2))
}

func TestPaginate_Errors(t *testing.T) {
	_, err := Paginate(0)
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = Paginate(-3)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoImages)
}

func TestIsPageStart(t *testing.T) {
	var starts []int
	for i := 0; i < 25; i++ {
		if IsPageStart(i) {
			starts = append(starts, i)
		}
	}
	assert.Equal(t, []int{8, 16, 24}, starts)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0))
	assert.Equal(t, 1, PageCount(1))
	assert.Equal(t, 1, PageCount(8))
	assert.Equal(t, 2, PageCount(9))
	assert.Equal(t, 3, PageCount(24))
}
