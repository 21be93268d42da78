package query

import (
	"math"

	"launchdash/domain/launch"
)

// Normalize makes a selection safe to compute: unknown sites fall back to
// AllSites, reversed bounds are swapped and a range overlapping the dataset is
// clamped to the dataset's payload range. A range lying entirely outside the
// dataset is kept as given so it still selects nothing.
func Normalize(ds *launch.Dataset, sel launch.SelectionState) launch.SelectionState {
	out := sel
	if out.SelectedSite != launch.AllSites && !ds.HasSite(out.SelectedSite) {
		out.SelectedSite = launch.AllSites
	}

	low, high := out.PayloadRange.Low, out.PayloadRange.High
	if math.IsNaN(low) {
		low = ds.MinPayload()
	}
	if math.IsNaN(high) {
		high = ds.MaxPayload()
	}
	if low > high {
		low, high = high, low
	}
	if high < ds.MinPayload() || low > ds.MaxPayload() {
		out.PayloadRange = launch.PayloadRange{Low: low, High: high}
		return out
	}
	out.PayloadRange = launch.PayloadRange{
		Low:  clamp(low, ds.MinPayload(), ds.MaxPayload()),
		High: clamp(high, ds.MinPayload(), ds.MaxPayload()),
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Engine binds the pure view functions to one dataset
type Engine struct {
	dataset *launch.Dataset
	records []launch.Record
}

// NewEngine creates an engine over ds. The engine holds its own copy of the
// records and never modifies it.
func NewEngine(ds *launch.Dataset) *Engine {
	return &Engine{dataset: ds, records: ds.Records()}
}

// Dataset returns the dataset the engine computes over
func (e *Engine) Dataset() *launch.Dataset {
	return e.dataset
}

// Records returns the engine's records. Callers must treat the slice as read-only.
func (e *Engine) Records() []launch.Record {
	return e.records
}

// Pie computes the success aggregation for site after normalization
func (e *Engine) Pie(site string) launch.PieView {
	sel := Normalize(e.dataset, launch.SelectionState{SelectedSite: site, PayloadRange: e.dataset.PayloadBounds()})
	return ComputeSuccessAggregation(e.records, sel.SelectedSite)
}

// Scatter computes the payload/outcome selection after normalization
func (e *Engine) Scatter(sel launch.SelectionState) launch.ScatterView {
	sel = Normalize(e.dataset, sel)
	return ComputeScatterSelection(e.records, sel.SelectedSite, sel.PayloadRange)
}

// Views computes both charts for one normalized selection
func (e *Engine) Views(sel launch.SelectionState) launch.Views {
	sel = Normalize(e.dataset, sel)
	return launch.Views{
		Selection: sel,
		Pie:       ComputeSuccessAggregation(e.records, sel.SelectedSite),
		Scatter:   ComputeScatterSelection(e.records, sel.SelectedSite, sel.PayloadRange),
	}
}
