// Package query computes the dashboard's derived views from the launch
// dataset and the current control selection. Every function here is pure:
// the same inputs always produce the same view and nothing is cached.
package query

import (
	"fmt"
	"math"

	"launchdash/domain/launch"

	"gonum.org/v1/gonum/stat"
)

// Chart titles
const (
	TitleSuccessAllSites = "Successful Launches Per Launch Site"
	TitleSuccessForSite  = "Success and Failure Ratio for %s"
	TitleScatterAll      = "Payload Mass VS Landing Outcome"
	TitleScatterForSite  = "Payload Mass VS Landing Outcome for %s"
)

// SliceColors are applied to pie slices by rendered position in both modes.
// Slices past the end of the list keep the renderer's default colours.
var SliceColors = []string{"red", "blue"}

// ComputeSuccessAggregation builds the pie view. For AllSites it sums the
// outcome class per site (site order is first-seen order). For one site it
// counts failures and successes, class 0 first.
func ComputeSuccessAggregation(records []launch.Record, selectedSite string) launch.PieView {
	if selectedSite == launch.AllSites {
		return successPerSite(records)
	}
	return successRatioForSite(records, selectedSite)
}

func successPerSite(records []launch.Record) launch.PieView {
	view := launch.PieView{Title: TitleSuccessAllSites, Site: launch.AllSites}

	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.LaunchSite]
		if !ok {
			i = len(view.Slices)
			index[r.LaunchSite] = i
			view.Slices = append(view.Slices, launch.PieSlice{Label: r.LaunchSite})
		}
		view.Slices[i].Value += float64(r.OutcomeClass)
	}

	colorByPosition(view.Slices)
	view.Empty = len(view.Slices) == 0
	return view
}

func successRatioForSite(records []launch.Record, site string) launch.PieView {
	view := launch.PieView{Title: fmt.Sprintf(TitleSuccessForSite, site), Site: site}

	var buckets [2]int
	for _, r := range records {
		if r.LaunchSite == site && (r.OutcomeClass == launch.OutcomeFailure || r.OutcomeClass == launch.OutcomeSuccess) {
			buckets[r.OutcomeClass]++
		}
	}

	// Ascending class order: failure then success.
	for class, count := range buckets {
		if count == 0 {
			continue
		}
		view.Slices = append(view.Slices, launch.PieSlice{
			Label: fmt.Sprintf("%d", class),
			Value: float64(count),
		})
	}
	colorByPosition(view.Slices)

	view.Empty = len(view.Slices) == 0
	return view
}

func colorByPosition(slices []launch.PieSlice) {
	for i := range slices {
		if i < len(SliceColors) {
			slices[i].Color = SliceColors[i]
		}
	}
}

// ComputeScatterSelection selects the launches whose payload lies inside
// payloadRange (inclusive) and, unless selectedSite is AllSites, that launched
// from selectedSite. An empty selection is a valid result.
func ComputeScatterSelection(records []launch.Record, selectedSite string, payloadRange launch.PayloadRange) launch.ScatterView {
	view := launch.ScatterView{
		Title:        TitleScatterAll,
		Site:         selectedSite,
		PayloadRange: payloadRange,
		Points:       []launch.ScatterPoint{},
		Categories:   []string{},
	}
	if selectedSite != launch.AllSites {
		view.Title = fmt.Sprintf(TitleScatterForSite, selectedSite)
	}

	seen := make(map[string]bool)
	for _, r := range records {
		if !payloadRange.Contains(r.PayloadMassKg) {
			continue
		}
		if selectedSite != launch.AllSites && r.LaunchSite != selectedSite {
			continue
		}
		view.Points = append(view.Points, launch.ScatterPoint{
			PayloadMassKg:          r.PayloadMassKg,
			OutcomeClass:           r.OutcomeClass,
			BoosterVersionCategory: r.BoosterVersionCategory,
		})
		if !seen[r.BoosterVersionCategory] {
			seen[r.BoosterVersionCategory] = true
			view.Categories = append(view.Categories, r.BoosterVersionCategory)
		}
	}

	view.Correlation = payloadOutcomeCorrelation(view.Points)
	return view
}

// payloadOutcomeCorrelation returns Pearson's r, or nil when it is undefined
func payloadOutcomeCorrelation(points []launch.ScatterPoint) *float64 {
	if len(points) < 2 {
		return nil
	}
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.PayloadMassKg
		y[i] = float64(p.OutcomeClass)
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return &r
}
