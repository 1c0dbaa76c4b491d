package pagination

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func strip(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.String())
	}
	return strings.Join(parts, " ")
}

func rows(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate_Basic(t *testing.T) {
	res := Paginate(rows(25), 2, 10)
	require.Equal(t, 3, res.TotalPages)
	require.Equal(t, 2, res.Page)
	require.Equal(t, 25, res.Total)
	require.Equal(t, rows(20)[10:], res.Rows)

	last := Paginate(rows(25), 3, 10)
	require.Equal(t, []int{21, 22, 23, 24, 25}, last.Rows)
}

func TestPaginate_ClampsPage(t *testing.T) {
	res := Paginate(rows(25), 9, 10)
	require.Equal(t, 3, res.Page)
	require.Len(t, res.Rows, 5)

	res = Paginate(rows(25), -4, 10)
	require.Equal(t, 1, res.Page)
	require.Len(t, res.Rows, 10)
}

func TestPaginate_Empty(t *testing.T) {
	res := Paginate([]int(nil), 3, 10)
	require.Equal(t, 1, res.TotalPages)
	require.Equal(t, 1, res.Page)
	require.Empty(t, res.Rows)
}

func TestPaginate_DefaultSize(t *testing.T) {
	res := Paginate(rows(11), 1, 0)
	require.Equal(t, DefaultPageSize, res.PageSize)
	require.Equal(t, 2, res.TotalPages)
}

func TestPaginate_RowsNeverExceedSize(t *testing.T) {
	for n := 0; n < 40; n++ {
		for page := -1; page < 6; page++ {
			res := Paginate(rows(n), page, 7)
			require.LessOrEqual(t, len(res.Rows), 7)
			require.GreaterOrEqual(t, res.Page, 1)
			require.LessOrEqual(t, res.Page, res.TotalPages)
		}
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		name           string
		current, total int
		want           string
	}{
		{"single", 1, 1, "1"},
		{"full strip", 3, 7, "1 2 3 4 5 6 7"},
		{"middle", 10, 20, "1 … 8 9 10 11 12 … 20"},
		{"head", 1, 20, "1 2 3 … 20"},
		{"near head", 4, 20, "1 2 3 4 5 6 … 20"},
		{"near tail", 18, 20, "1 … 16 17 18 19 20"},
		{"tail", 20, 20, "1 … 18 19 20"},
		{"eight pages", 5, 8, "1 … 3 4 5 6 7 8"},
		{"clamped", 50, 9, "1 … 7 8 9"},
		{"zero total", 1, 0, "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, strip(Window(tc.current, tc.total)))
		})
	}
}

func TestWindow_AlwaysHasEnds(t *testing.T) {
	for total := 1; total < 30; total++ {
		for cur := 1; cur <= total; cur++ {
			w := Window(cur, total)
			require.Equal(t, 1, w[0].Page)
			require.Equal(t, total, w[len(w)-1].Page)
			found := false
			for _, it := range w {
				if it.Page == cur {
					found = true
				}
			}
			require.True(t, found)
		}
	}
}
