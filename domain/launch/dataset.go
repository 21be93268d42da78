package launch

// Summary holds descriptive statistics computed once at load time
type Summary struct {
	RecordCount   int     `json:"record_count"`
	SuccessCount  int     `json:"success_count"`
	SuccessRate   float64 `json:"success_rate"`
	MeanPayload   float64 `json:"mean_payload_kg"`
	MedianPayload float64 `json:"median_payload_kg"`
}

// Dataset is the read-only launch table shared by every recomputation.
// Nothing hands out its internal slices; accessors return copies.
type Dataset struct {
	source     string
	records    []Record
	sites      []string
	siteIndex  map[string]struct{}
	minPayload float64
	maxPayload float64
	summary    Summary
}

// NewDataset builds an immutable dataset handle. records must be non-empty;
// sites keep first-seen order.
func NewDataset(source string, records []Record, summary Summary) *Dataset {
	owned := make([]Record, len(records))
	copy(owned, records)

	ds := &Dataset{
		source:    source,
		records:   owned,
		siteIndex: make(map[string]struct{}),
		summary:   summary,
	}
	for i, r := range owned {
		if _, seen := ds.siteIndex[r.LaunchSite]; !seen {
			ds.siteIndex[r.LaunchSite] = struct{}{}
			ds.sites = append(ds.sites, r.LaunchSite)
		}
		if i == 0 || r.PayloadMassKg < ds.minPayload {
			ds.minPayload = r.PayloadMassKg
		}
		if i == 0 || r.PayloadMassKg > ds.maxPayload {
			ds.maxPayload = r.PayloadMassKg
		}
	}
	return ds
}

// Source describes where the records were loaded from
func (d *Dataset) Source() string { return d.source }

// Len returns the number of records
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of all records in source order
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Sites returns the distinct launch sites in first-seen order
func (d *Dataset) Sites() []string {
	out := make([]string, len(d.sites))
	copy(out, d.sites)
	return out
}

// HasSite reports whether site appears in the dataset
func (d *Dataset) HasSite(site string) bool {
	_, ok := d.siteIndex[site]
	return ok
}

// MinPayload returns the smallest payload mass in the dataset
func (d *Dataset) MinPayload() float64 { return d.minPayload }

// MaxPayload returns the largest payload mass in the dataset
func (d *Dataset) MaxPayload() float64 { return d.maxPayload }

// PayloadBounds returns [MinPayload, MaxPayload]
func (d *Dataset) PayloadBounds() PayloadRange {
	return PayloadRange{Low: d.minPayload, High: d.maxPayload}
}

// Summary returns the load-time statistics
func (d *Dataset) Summary() Summary { return d.summary }

// DefaultSelection is the state the controls start in: all sites, full range
func (d *Dataset) DefaultSelection() SelectionState {
	return SelectionState{
		SelectedSite: AllSites,
		PayloadRange: d.PayloadBounds(),
	}
}
