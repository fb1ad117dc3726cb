package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemFilterNormalize(t *testing.T) {
	f := ItemFilter{PageNumber: -5, PageSize: 0}
	f.Normalize()
	require.Equal(t, 1, f.PageNumber)
	require.Equal(t, DefaultPageSize, f.PageSize)
	require.Zero(t, f.Skip())

	f = ItemFilter{PageNumber: math.MaxInt, PageSize: 1000}
	f.Normalize()
	require.Equal(t, MaxPageSize, f.PageSize)
	require.Equal(t, math.MaxInt/MaxPageSize*MaxPageSize, f.Skip())
}
