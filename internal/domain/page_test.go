package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPage_Clamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		page, limit int
		want        Page
	}{
		{"defaults", 0, 0, Page{Page: 1, Limit: DefaultPageLimit}},
		{"negative page", -3, 10, Page{Page: 1, Limit: 10}},
		{"negative limit", 2, -5, Page{Page: 2, Limit: 1}},
		{"limit above max", 1, 1000, Page{Page: 1, Limit: MaxPageLimit}},
		{"as is", 3, 25, Page{Page: 3, Limit: 25}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, NewPage(tc.page, tc.limit))
		})
	}
}

func TestPaginate_120Rows(t *testing.T) {
	t.Parallel()

	first := Paginate(NewPage(1, 50), 120)
	require.Equal(t, 3, first.TotalPages)
	require.True(t, first.HasNextPage)
	require.False(t, first.HasPrevPage)
	require.Equal(t, 120, first.Total)

	last := Paginate(NewPage(3, 50), 120)
	require.False(t, last.HasNextPage)
	require.True(t, last.HasPrevPage)
}

func TestPaginate_Empty(t *testing.T) {
	t.Parallel()

	p := Paginate(NewPage(1, 10), 0)
	require.Equal(t, 0, p.TotalPages)
	require.False(t, p.HasNextPage)
	require.False(t, p.HasPrevPage)
}

func TestPage_Offset(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, NewPage(1, 50).Offset())
	require.Equal(t, 100, NewPage(3, 50).Offset())
}
