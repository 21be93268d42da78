package launch

// AllSites is the dropdown sentinel meaning "no site filter"
const AllSites = "ALL"

// AllSitesLabel is the dropdown label shown for AllSites
const AllSitesLabel = "All Sites"

// Outcome classes as stored in the dataset's class column
const (
	OutcomeFailure = 0
	OutcomeSuccess = 1
)

// Column names expected in the launch table header
const (
	ColumnLaunchSite      = "Launch Site"
	ColumnPayloadMass     = "Payload Mass (kg)"
	ColumnClass           = "class"
	ColumnBoosterCategory = "Booster Version Category"
	ColumnFlightNumber    = "Flight Number"
	ColumnBoosterVersion  = "Booster Version"
)

// RequiredColumns lists the columns a launch table must carry
var RequiredColumns = []string{
	ColumnLaunchSite,
	ColumnPayloadMass,
	ColumnClass,
	ColumnBoosterCategory,
}

// Record is one row of the launch table
type Record struct {
	FlightNumber           int     `json:"flight_number,omitempty" db:"flight_number"`
	LaunchSite             string  `json:"launch_site" db:"launch_site"`
	PayloadMassKg          float64 `json:"payload_mass_kg" db:"payload_mass_kg"`
	OutcomeClass           int     `json:"class" db:"class"`
	BoosterVersion         string  `json:"booster_version,omitempty" db:"booster_version"`
	BoosterVersionCategory string  `json:"booster_version_category" db:"booster_version_category"`
}

// Succeeded reports whether the landing outcome was a success
func (r Record) Succeeded() bool {
	return r.OutcomeClass == OutcomeSuccess
}

// PayloadRange is an inclusive [Low, High] payload mass window in kg
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether mass lies inside the range, both ends inclusive
func (r PayloadRange) Contains(mass float64) bool {
	return mass >= r.Low && mass <= r.High
}

// SelectionState is what the two dashboard controls currently hold
type SelectionState struct {
	SelectedSite string       `json:"selected_site"`
	PayloadRange PayloadRange `json:"payload_range"`
}

// IsAllSites reports whether the selection has no site filter
func (s SelectionState) IsAllSites() bool {
	return s.SelectedSite == AllSites
}

// PieSlice is one wedge of the proportion chart
type PieSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// PieView is the success aggregation chart
type PieView struct {
	Title  string     `json:"title"`
	Site   string     `json:"site"`
	Slices []PieSlice `json:"slices"`
	Empty  bool       `json:"empty"`
}

// Total returns the sum of all slice values
func (v PieView) Total() float64 {
	total := 0.0
	for _, s := range v.Slices {
		total += s.Value
	}
	return total
}

// ScatterPoint is one launch plotted as payload vs outcome
type ScatterPoint struct {
	PayloadMassKg          float64 `json:"payload_mass_kg"`
	OutcomeClass           int     `json:"class"`
	BoosterVersionCategory string  `json:"booster_version_category"`
}

// ScatterView is the payload/outcome correlation chart
type ScatterView struct {
	Title        string         `json:"title"`
	Site         string         `json:"site"`
	PayloadRange PayloadRange   `json:"payload_range"`
	Points       []ScatterPoint `json:"points"`
	Categories   []string       `json:"categories"`
	// Correlation is Pearson's r between payload and class; nil when either
	// variable is constant or fewer than two points are selected.
	Correlation *float64 `json:"correlation,omitempty"`
}

// Views bundles both charts for one selection
type Views struct {
	Selection SelectionState `json:"selection"`
	Pie       PieView        `json:"pie"`
	Scatter   ScatterView    `json:"scatter"`
}
