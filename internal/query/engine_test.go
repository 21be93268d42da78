package query

import (
	"fmt"
	"testing"

	"launchdash/domain/launch"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourSiteRecords builds a dataset where CCAFS LC-40 has 10 launches and 3 successes
func fourSiteRecords() []launch.Record {
	var records []launch.Record
	add := func(site string, payload float64, class int, category string) {
		records = append(records, launch.Record{
			LaunchSite:             site,
			PayloadMassKg:          payload,
			OutcomeClass:           class,
			BoosterVersionCategory: category,
		})
	}

	ccafsClasses := []int{0, 0, 1, 0, 0, 1, 0, 0, 1, 0}
	ccafsPayloads := []float64{0, 525, 677, 500, 3170, 3325, 2296, 1316, 4535, 5000}
	for i, class := range ccafsClasses {
		add("CCAFS LC-40", ccafsPayloads[i], class, "v1.1")
	}
	add("VAFB SLC-4E", 500, 0, "v1.1")
	add("VAFB SLC-4E", 9600, 1, "FT")
	add("KSC LC-39A", 2490, 1, "FT")
	add("KSC LC-39A", 5000, 1, "B4")
	add("KSC LC-39A", 3136, 0, "FT")
	add("CCAFS SLC-40", 3600, 1, "B5")
	add("CCAFS SLC-40", 6500, 0, "B4")
	return records
}

func totalSuccesses(records []launch.Record) int {
	n := 0
	for _, r := range records {
		n += r.OutcomeClass
	}
	return n
}

func TestSuccessAggregationAllSites(t *testing.T) {
	records := fourSiteRecords()
	view := ComputeSuccessAggregation(records, launch.AllSites)

	assert.Equal(t, TitleSuccessAllSites, view.Title)
	require.Len(t, view.Slices, 4)
	assert.False(t, view.Empty)
	assert.Equal(t, float64(totalSuccesses(records)), view.Total())

	labels := make([]string, len(view.Slices))
	for i, s := range view.Slices {
		labels[i] = s.Label
	}
	assert.Equal(t, []string{"CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A", "CCAFS SLC-40"}, labels)
	assert.Equal(t, 3.0, view.Slices[0].Value)
	assert.Equal(t, 2.0, view.Slices[2].Value)

	colors := make([]string, len(view.Slices))
	for i, s := range view.Slices {
		colors[i] = s.Color
	}
	assert.Equal(t, []string{"red", "blue", "", ""}, colors)
}

func TestSuccessAggregationSingleSite(t *testing.T) {
	view := ComputeSuccessAggregation(fourSiteRecords(), "CCAFS LC-40")

	want := launch.PieView{
		Title: "Success and Failure Ratio for CCAFS LC-40",
		Site:  "CCAFS LC-40",
		Slices: []launch.PieSlice{
			{Label: "0", Value: 7, Color: "red"},
			{Label: "1", Value: 3, Color: "blue"},
		},
	}
	if diff := cmp.Diff(want, view); diff != "" {
		t.Errorf("pie view mismatch (-want +got):\n%s", diff)
	}
}

func TestSuccessAggregationColorsFollowClassOrderNotSize(t *testing.T) {
	// KSC LC-39A has more successes than failures; failure must still be red
	view := ComputeSuccessAggregation(fourSiteRecords(), "KSC LC-39A")

	require.Len(t, view.Slices, 2)
	assert.Equal(t, launch.PieSlice{Label: "0", Value: 1, Color: "red"}, view.Slices[0])
	assert.Equal(t, launch.PieSlice{Label: "1", Value: 2, Color: "blue"}, view.Slices[1])
}

func TestSuccessAggregationBucketSumEqualsSiteCount(t *testing.T) {
	records := fourSiteRecords()
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.LaunchSite]++
	}

	for site, n := range counts {
		view := ComputeSuccessAggregation(records, site)
		assert.Equal(t, float64(n), view.Total(), site)
	}
}

func TestSuccessAggregationEmpty(t *testing.T) {
	view := ComputeSuccessAggregation(fourSiteRecords(), "Boca Chica")
	assert.True(t, view.Empty)
	assert.Empty(t, view.Slices)
	assert.Equal(t, "Success and Failure Ratio for Boca Chica", view.Title)

	view = ComputeSuccessAggregation(nil, launch.AllSites)
	assert.True(t, view.Empty)
}

func TestScatterSelectionFullRange(t *testing.T) {
	records := fourSiteRecords()
	view := ComputeScatterSelection(records, launch.AllSites, launch.PayloadRange{Low: 0, High: 10000})

	assert.Equal(t, TitleScatterAll, view.Title)
	assert.Len(t, view.Points, len(records))
	assert.Equal(t, []string{"v1.1", "FT", "B4", "B5"}, view.Categories)
	require.NotNil(t, view.Correlation)
}

func TestScatterSelectionPointRange(t *testing.T) {
	view := ComputeScatterSelection(fourSiteRecords(), launch.AllSites, launch.PayloadRange{Low: 5000, High: 5000})

	require.Len(t, view.Points, 2)
	for _, p := range view.Points {
		assert.Equal(t, 5000.0, p.PayloadMassKg)
	}

	view = ComputeScatterSelection(fourSiteRecords(), launch.AllSites, launch.PayloadRange{Low: 7000, High: 7000})
	assert.Empty(t, view.Points)
	assert.NotNil(t, view.Points, "empty selection should serialize as []")
	assert.Nil(t, view.Correlation)
}

func TestScatterSelectionSiteFilter(t *testing.T) {
	view := ComputeScatterSelection(fourSiteRecords(), "KSC LC-39A", launch.PayloadRange{Low: 2500, High: 5000})

	assert.Equal(t, "Payload Mass VS Landing Outcome for KSC LC-39A", view.Title)
	assert.Equal(t, []launch.ScatterPoint{
		{PayloadMassKg: 5000, OutcomeClass: 1, BoosterVersionCategory: "B4"},
		{PayloadMassKg: 3136, OutcomeClass: 0, BoosterVersionCategory: "FT"},
	}, view.Points)
}

func TestScatterSelectionMonotonicInRangeWidth(t *testing.T) {
	records := fourSiteRecords()
	sites := []string{launch.AllSites, "CCAFS LC-40", "VAFB SLC-4E"}

	for _, site := range sites {
		prev := -1
		for width := 0.0; width <= 10000; width += 500 {
			low := 5000 - width/2
			view := ComputeScatterSelection(records, site, launch.PayloadRange{Low: low, High: low + width})
			assert.GreaterOrEqual(t, len(view.Points), prev, fmt.Sprintf("site %s width %.0f", site, width))
			prev = len(view.Points)
		}
	}
}

func TestComputationsAreIdempotent(t *testing.T) {
	records := fourSiteRecords()
	snapshot := append([]launch.Record(nil), records...)
	r := launch.PayloadRange{Low: 500, High: 5000}

	for _, site := range []string{launch.AllSites, "CCAFS SLC-40"} {
		if diff := cmp.Diff(ComputeSuccessAggregation(records, site), ComputeSuccessAggregation(records, site)); diff != "" {
			t.Errorf("pie not idempotent for %s:\n%s", site, diff)
		}
		if diff := cmp.Diff(ComputeScatterSelection(records, site, r), ComputeScatterSelection(records, site, r)); diff != "" {
			t.Errorf("scatter not idempotent for %s:\n%s", site, diff)
		}
	}

	assert.Equal(t, snapshot, records, "computations must not mutate their input")
}
