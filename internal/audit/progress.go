package audit

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"auditdesk/pkg/types"
)

const (
	Series10 = "10"
	Series20 = "20"
	Series30 = "30"
)

var seriesTitles = map[string]string{
	Series10: "10-Series: Partner Checklists",
	Series20: "20-Series: Planning Phase",
	Series30: "30-Series: Completion & Financials",
}

// SeriesOrder lists the defined buckets in display order.
var SeriesOrder = []string{Series10, Series20, Series30}

// Progress returns round(100 * points / (3 * len(items))). An item marked not
// applicable scores the full 3 points whatever its review flags say; otherwise
// it scores one point per review flag set. An empty set is 0%.
func Progress(items []*types.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}

	points := 0
	for _, item := range items {
		points += item.ReviewPoints()
	}

	return int(math.Round(100 * float64(points) / float64(3*len(items))))
}

// SeriesOf returns the bucket for a checklist code, or "" when the two
// character prefix is not one of the defined series.
func SeriesOf(code string) string {
	if len(code) < 2 {
		return ""
	}

	prefix := code[:2]
	if _, ok := seriesTitles[prefix]; ok {
		return prefix
	}
	return ""
}

// SeriesGroups holds the defined buckets plus the items that fit none of them.
type SeriesGroups struct {
	Buckets map[string][]*types.ChecklistItem
	Other   []*types.ChecklistItem
}

func GroupBySeries(items []*types.ChecklistItem) SeriesGroups {
	groups := SeriesGroups{Buckets: make(map[string][]*types.ChecklistItem, len(SeriesOrder))}
	for _, series := range SeriesOrder {
		groups.Buckets[series] = make([]*types.ChecklistItem, 0)
	}

	for _, item := range items {
		series := SeriesOf(item.Code)
		if series == "" {
			groups.Other = append(groups.Other, item)
			continue
		}
		groups.Buckets[series] = append(groups.Buckets[series], item)
	}

	return groups
}

func summarizeProgress(projectID string, items []*types.ChecklistItem) *types.ProjectProgress {
	groups := GroupBySeries(items)

	out := &types.ProjectProgress{
		ProjectID: projectID,
		ItemCount: len(items),
		Progress:  Progress(items),
		Series:    make([]types.SeriesProgress, 0, len(SeriesOrder)),
		Other: types.SeriesProgress{
			Series:    "other",
			Title:     "Other",
			ItemCount: len(groups.Other),
			Progress:  Progress(groups.Other),
		},
	}

	for _, series := range SeriesOrder {
		bucket := groups.Buckets[series]
		out.Series = append(out.Series, types.SeriesProgress{
			Series:    series,
			Title:     seriesTitles[series],
			ItemCount: len(bucket),
			Progress:  Progress(bucket),
		})
	}

	return out
}

// SortChecklistItems orders items by series bucket (unbucketed last), then by
// natural code order so that 20-4 < 20-4a < 20-10.
func SortChecklistItems(items []*types.ChecklistItem) {
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := seriesRank(items[i].Code), seriesRank(items[j].Code)
		if si != sj {
			return si < sj
		}
		return CompareCodes(items[i].Code, items[j].Code) < 0
	})
}

func seriesRank(code string) int {
	series := SeriesOf(code)
	for i, s := range SeriesOrder {
		if s == series {
			return i
		}
	}
	return len(SeriesOrder)
}

// CompareCodes compares checklist codes segment by segment, where each
// segment is split on "-" and compared numerically on its leading digits
// before falling back to the remaining text.
func CompareCodes(a, b string) int {
	as, bs := strings.Split(a, "-"), strings.Split(b, "-")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return len(as) - len(bs)
}

func compareSegment(a, b string) int {
	an, arest := leadingNumber(a)
	bn, brest := leadingNumber(b)

	switch {
	case an >= 0 && bn >= 0 && an != bn:
		if an < bn {
			return -1
		}
		return 1
	case an >= 0 && bn < 0:
		return -1
	case an < 0 && bn >= 0:
		return 1
	}

	return strings.Compare(arest, brest)
}

func leadingNumber(s string) (int, string) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return -1, s
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return -1, s
	}
	return n, s[end:]
}
