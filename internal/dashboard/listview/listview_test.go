package listview

import (
	"testing"
	"time"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type file struct {
	ID       int
	Name     string
	Path     string
	Type     string
	Size     int64
	Modified time.Time
}

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var fileView = Config[file]{
	Text:     []func(file) string{func(f file) string { return f.Name }, func(f file) string { return f.Path }},
	Category: func(f file) string { return f.Type },
	Sorts: map[SortKey]Compare[file]{
		SortRecent: ByTimeDesc(func(f file) time.Time { return f.Modified }),
		SortName:   ByTextAsc(func(f file) string { return f.Name }),
		SortSize:   ByNumberDesc(func(f file) int64 { return f.Size }),
	},
}

func sample() []file {
	return []file{
		{ID: 1, Name: "Annual Report", Path: "/finance", Type: "spreadsheet", Size: 300, Modified: base.Add(2 * time.Hour)},
		{ID: 2, Name: "report draft", Path: "/docs", Type: "document", Size: 100, Modified: base.Add(5 * time.Hour)},
		{ID: 3, Name: "logo", Path: "/brand/report-assets", Type: "image", Size: 300, Modified: base.Add(1 * time.Hour)},
		{ID: 4, Name: "Contract", Path: "/legal", Type: "document", Size: 50, Modified: base.Add(3 * time.Hour)},
	}
}

func ids(fs []file) []int {
	out := make([]int, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.ID)
	}
	return out
}

func TestApply_EmptyCriteriaKeepsOrder(t *testing.T) {
	got, err := Apply(sample(), fileView, Criteria{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(got))
}

func TestApply_TextMatchesAnyField(t *testing.T) {
	got, err := Apply(sample(), fileView, Criteria{Query: "  REPORT "})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(got), "case-insensitive, name OR path")
}

func TestApply_ConjunctiveFilter(t *testing.T) {
	got, err := Apply(sample(), fileView, Criteria{Query: "report", Category: "document"})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids(got), "Annual Report is a spreadsheet and must be excluded")

	got, err = Apply(sample(), fileView, Criteria{Query: "report", Category: AllCategories})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(got))
}

func TestApply_Sorts(t *testing.T) {
	cases := []struct {
		key  SortKey
		want []int
	}{
		{SortRecent, []int{2, 4, 1, 3}},
		{SortName, []int{1, 4, 3, 2}},
		{SortSize, []int{1, 3, 2, 4}},
	}
	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			got, err := Apply(sample(), fileView, Criteria{Sort: tc.key})
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_StableOnTies(t *testing.T) {
	in := []file{{ID: 1, Name: "b"}, {ID: 2, Name: "b"}, {ID: 3, Name: "a"}, {ID: 4, Name: "B"}}
	got, err := Apply(in, fileView, Criteria{Sort: SortName})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2, 4}, ids(got))
}

func TestApply_DeterministicAndPure(t *testing.T) {
	in := sample()
	snapshot := append([]file(nil), in...)
	cr := Criteria{Query: "o", Sort: SortSize}

	first, err := Apply(in, fileView, cr)
	require.NoError(t, err)
	second, err := Apply(in, fileView, cr)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, in, "input must not be reordered")
}

func TestApply_UnknownSort(t *testing.T) {
	_, err := Apply(sample(), fileView, Criteria{Sort: "colour"})
	assert.ErrorIs(t, err, domain.ErrUnknownSort)
}

func TestApply_DefaultSort(t *testing.T) {
	cfg := fileView
	cfg.DefaultSort = SortRecent
	got, err := Apply(sample(), cfg, Criteria{})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 1, 3}, ids(got))
}

func TestByTimeDesc_ZeroLast(t *testing.T) {
	in := []file{{ID: 1}, {ID: 2, Modified: base}, {ID: 3}}
	got, err := Apply(in, fileView, Criteria{Sort: SortRecent})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3}, ids(got))
}

func TestSortKeys(t *testing.T) {
	assert.Equal(t, []SortKey{SortName, SortRecent, SortSize}, fileView.SortKeys())
}
