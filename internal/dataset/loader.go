package dataset

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"launchdash/adapters/tabular"
	"launchdash/domain/launch"
	"launchdash/internal"
	"launchdash/internal/errors"

	"github.com/montanaflynn/stats"
)

// Loader turns a tabular source into the immutable launch dataset
type Loader struct {
	reader tabular.Reader
	logger *internal.Logger
}

// NewLoader creates a loader over reader
func NewLoader(reader tabular.Reader) *Loader {
	return &Loader{
		reader: reader,
		logger: internal.DefaultLogger.WithComponent("Loader"),
	}
}

// Load reads source (CSV/XLSX path or database DSN) and builds the dataset.
// Every failure is a DATA_LOAD_ERROR.
func Load(ctx context.Context, source string) (*launch.Dataset, error) {
	return NewLoader(tabular.NewReader(source)).Load(ctx)
}

// Load reads, validates and converts every row. It fails on the first bad row
// rather than skipping it, so a partially parsed table is never served.
func (l *Loader) Load(ctx context.Context) (*launch.Dataset, error) {
	start := time.Now()
	table, err := l.reader.Read(ctx)
	if err != nil {
		return nil, errors.DataLoadCause("failed to read "+l.reader.Describe(), err)
	}

	if err := checkColumns(table); err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, errors.DataLoadf("%s has no data rows", l.reader.Describe())
	}

	records := make([]launch.Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		record, err := parseRecord(row)
		if err != nil {
			// +2: one for the header, one for 1-based numbering
			return nil, errors.Wrapf(err, "row %d", i+2)
		}
		records = append(records, record)
	}

	summary, err := summarize(records)
	if err != nil {
		return nil, errors.DataLoadCause("failed to summarize payloads", err)
	}

	ds := launch.NewDataset(l.reader.Describe(), records, summary)
	l.logger.Info("Loaded %d launches from %s in %s (%d sites, payload %.0f-%.0f kg)",
		ds.Len(), ds.Source(), time.Since(start).Round(time.Millisecond),
		len(ds.Sites()), ds.MinPayload(), ds.MaxPayload())
	return ds, nil
}

func checkColumns(table *tabular.Table) error {
	var missing []string
	for _, col := range launch.RequiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.DataLoadf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func parseRecord(row tabular.Row) (launch.Record, error) {
	site := row[launch.ColumnLaunchSite]
	if site == "" {
		return launch.Record{}, errors.DataLoadf("empty %q", launch.ColumnLaunchSite)
	}

	payload, err := strconv.ParseFloat(row[launch.ColumnPayloadMass], 64)
	if err != nil || math.IsNaN(payload) || math.IsInf(payload, 0) {
		return launch.Record{}, errors.DataLoadf("invalid %q value %q", launch.ColumnPayloadMass, row[launch.ColumnPayloadMass])
	}
	if payload < 0 {
		return launch.Record{}, errors.DataLoadf("negative %q value %v", launch.ColumnPayloadMass, payload)
	}

	class, err := parseClass(row[launch.ColumnClass])
	if err != nil {
		return launch.Record{}, err
	}

	record := launch.Record{
		LaunchSite:             site,
		PayloadMassKg:          payload,
		OutcomeClass:           class,
		BoosterVersion:         row[launch.ColumnBoosterVersion],
		BoosterVersionCategory: row[launch.ColumnBoosterCategory],
	}
	if fn := row[launch.ColumnFlightNumber]; fn != "" {
		if n, err := strconv.Atoi(fn); err == nil {
			record.FlightNumber = n
		}
	}
	return record, nil
}

// parseClass accepts "0"/"1" and their float spellings ("1.0") from spreadsheets
func parseClass(raw string) (int, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.DataLoadf("invalid %q value %q", launch.ColumnClass, raw)
	}
	switch v {
	case launch.OutcomeFailure:
		return launch.OutcomeFailure, nil
	case launch.OutcomeSuccess:
		return launch.OutcomeSuccess, nil
	default:
		return 0, errors.DataLoadf("%q must be 0 or 1, got %q", launch.ColumnClass, raw)
	}
}

func summarize(records []launch.Record) (launch.Summary, error) {
	payloads := make(stats.Float64Data, len(records))
	successes := 0
	for i, r := range records {
		payloads[i] = r.PayloadMassKg
		if r.Succeeded() {
			successes++
		}
	}

	mean, err := payloads.Mean()
	if err != nil {
		return launch.Summary{}, err
	}
	median, err := payloads.Median()
	if err != nil {
		return launch.Summary{}, err
	}

	return launch.Summary{
		RecordCount:   len(records),
		SuccessCount:  successes,
		SuccessRate:   float64(successes) / float64(len(records)),
		MeanPayload:   mean,
		MedianPayload: median,
	}, nil
}
