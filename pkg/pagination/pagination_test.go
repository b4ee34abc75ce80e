package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		params     Params
		wantOffset int
		wantLimit  int
	}{
		{
			name:       "first page",
			params:     Params{Page: 1, PageSize: 20},
			wantOffset: 0,
			wantLimit:  20,
		},
		{
			name:       "second page",
			params:     Params{Page: 2, PageSize: 20},
			wantOffset: 20,
			wantLimit:  20,
		},
		{
			name:       "zero page size disables paging",
			params:     Params{Page: 3, PageSize: 0},
			wantOffset: 0,
			wantLimit:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := tt.params.CalculateOffsetLimit()
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestBuildMeta(t *testing.T) {
	meta := Params{Page: 2, PageSize: 20}.BuildMeta(25)
	assert.Equal(t, Meta{Current: 2, Total: 25, Pages: 2}, meta)

	meta = Params{Page: 1, PageSize: 20}.BuildMeta(0)
	assert.Equal(t, Meta{Current: 1, Total: 0, Pages: 0}, meta)
}

func TestSlice(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}

	page1 := Slice(items, Params{Page: 1, PageSize: 20})
	assert.Len(t, page1, 20)
	assert.Equal(t, 1, page1[0])

	page2 := Slice(items, Params{Page: 2, PageSize: 20})
	assert.Len(t, page2, 5)
	assert.Equal(t, 21, page2[0])

	page3 := Slice(items, Params{Page: 3, PageSize: 20})
	assert.Empty(t, page3)

	all := Slice(items, Params{Page: 1, PageSize: 0})
	assert.Len(t, all, 25)
}
