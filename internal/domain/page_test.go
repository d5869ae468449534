package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		pageNum    int
		pageSize   int
		totalSize  int
		totalPages int
	}{
		{"exact multiple", 1, 10, 30, 3},
		{"partial last page", 1, 10, 31, 4},
		{"single item", 1, 10, 1, 1},
		{"empty result", 1, 10, 0, 0},
		{"zero page size", 1, 0, 50, 0},
		{"page size one", 2, 1, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.pageNum, tt.pageSize, tt.totalSize)
			require.Equal(t, tt.totalPages, p.TotalPages)
			require.Equal(t, tt.totalSize, p.TotalSize)
		})
	}
}

func TestPageNavigation(t *testing.T) {
	p := NewPage(2, 10, 35)
	require.True(t, p.HasNext())
	require.True(t, p.HasPrev())
	require.Equal(t, 10, p.Offset())

	last := NewPage(4, 10, 35)
	require.False(t, last.HasNext())

	first := NewPage(1, 10, 35)
	require.False(t, first.HasPrev())
	require.Equal(t, 0, first.Offset())
}
