package audit

import (
	"testing"

	"auditdesk/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(code string, senior, eqr, partner, na bool) *types.ChecklistItem {
	return &types.ChecklistItem{Code: code, SeniorReview: senior, EQRReview: eqr, PartnerReview: partner, NotApplicable: na}
}

func TestProgressEmpty(t *testing.T) {
	assert.Equal(t, 0, Progress(nil))
	assert.Equal(t, 0, Progress([]*types.ChecklistItem{}))
}

func TestProgressNotApplicableScoresFull(t *testing.T) {
	assert.Equal(t, 100, Progress([]*types.ChecklistItem{item("20-1", false, false, false, true)}))
	assert.Equal(t, 100, Progress([]*types.ChecklistItem{item("20-1", true, false, false, true)}))
}

func TestProgressRounding(t *testing.T) {
	tests := []struct {
		name  string
		items []*types.ChecklistItem
		want  int
	}{
		{"one flag of three", []*types.ChecklistItem{item("10-1", true, false, false, false)}, 33},
		{"two flags of three", []*types.ChecklistItem{item("10-1", true, true, false, false)}, 67},
		{"mixed flags", []*types.ChecklistItem{
			item("10-1", true, false, false, false),
			item("10-2", true, true, false, false),
		}, 50},
		{"five of nine", []*types.ChecklistItem{
			item("20-1", true, true, false, false),
			item("20-2", false, false, false, true),
			item("20-3", false, false, false, false),
		}, 56},
		{"one of six rounds up from 16.67", []*types.ChecklistItem{
			item("30-1", true, false, false, false),
			item("30-2", false, false, false, false),
		}, 17},
	}

	halfway := make([]*types.ChecklistItem, 0, 8)
	for i := 0; i < 8; i++ {
		halfway = append(halfway, item("20-1", i < 3, false, false, false))
	}
	tests = append(tests, struct {
		name  string
		items []*types.ChecklistItem
		want  int
	}{"12.5 rounds half up", halfway, 13})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(tt.items))
		})
	}
}

func TestProgressMonotonicInFlags(t *testing.T) {
	items := []*types.ChecklistItem{
		item("20-1", false, false, false, false),
		item("20-2", false, false, false, false),
		item("20-3", false, false, false, false),
	}

	last := Progress(items)
	for _, it := range items {
		for _, set := range []func(){
			func() { it.SeniorReview = true },
			func() { it.EQRReview = true },
			func() { it.PartnerReview = true },
		} {
			set()
			next := Progress(items)
			require.GreaterOrEqual(t, next, last)
			last = next
		}
	}
	require.Equal(t, 100, last)
}

func TestSeriesOf(t *testing.T) {
	assert.Equal(t, Series10, SeriesOf("10-4"))
	assert.Equal(t, Series20, SeriesOf("20-4a"))
	assert.Equal(t, Series30, SeriesOf("30-17"))
	assert.Equal(t, "", SeriesOf("99-1"))
	assert.Equal(t, "", SeriesOf("1"))
}

func TestGroupBySeries(t *testing.T) {
	items := []*types.ChecklistItem{
		item("10-4", false, false, false, false),
		item("20-1", false, false, false, false),
		item("99-1", false, false, false, false),
	}

	groups := GroupBySeries(items)
	require.Len(t, groups.Buckets[Series10], 1)
	require.Equal(t, "10-4", groups.Buckets[Series10][0].Code)
	require.Len(t, groups.Buckets[Series20], 1)
	require.Empty(t, groups.Buckets[Series30])
	require.Len(t, groups.Other, 1)
	require.Equal(t, "99-1", groups.Other[0].Code)
}

func TestSortChecklistItemsNaturalOrder(t *testing.T) {
	codes := []string{"99-1", "30-2", "20-10", "20-4a", "10-5", "20-4", "20-4b", "20-9", "10-1"}
	items := make([]*types.ChecklistItem, 0, len(codes))
	for _, c := range codes {
		items = append(items, item(c, false, false, false, false))
	}

	SortChecklistItems(items)

	got := make([]string, 0, len(items))
	for _, it := range items {
		got = append(got, it.Code)
	}
	assert.Equal(t, []string{"10-1", "10-5", "20-4", "20-4a", "20-4b", "20-9", "20-10", "30-2", "99-1"}, got)
}

func TestSummarizeProgress(t *testing.T) {
	items := []*types.ChecklistItem{
		item("10-1", true, true, true, false),
		item("20-1", false, false, false, false),
		item("X-1", false, false, false, true),
	}

	summary := summarizeProgress("p1", items)
	require.Equal(t, 3, summary.ItemCount)
	require.Equal(t, 67, summary.Progress)
	require.Len(t, summary.Series, 3)
	require.Equal(t, types.SeriesProgress{Series: "10", Title: "10-Series: Partner Checklists", ItemCount: 1, Progress: 100}, summary.Series[0])
	require.Equal(t, 0, summary.Series[1].Progress)
	require.Equal(t, 0, summary.Series[2].ItemCount)
	require.Equal(t, 1, summary.Other.ItemCount)
	require.Equal(t, 100, summary.Other.Progress)
}

func TestTypeAbbreviation(t *testing.T) {
	assert.Equal(t, "SA", TypeAbbreviation("Statutory Audit"))
	assert.Equal(t, "TA", TypeAbbreviation("tax audit"))
	assert.Equal(t, "IA", TypeAbbreviation("Internal  Audit"))
	assert.Equal(t, "GST", TypeAbbreviation("GST Audit"))
	assert.Equal(t, "FDD", TypeAbbreviation("financial due diligence"))
	assert.Equal(t, "PRJ", TypeAbbreviation("  "))
	assert.Equal(t, "CL-1001-TA-2025", ProjectCodePrefix("CL-1001", "Tax Audit", 2025))
}
