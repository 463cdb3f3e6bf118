// Package dataset loads the air-quality CSV and computes the aggregates the
// dashboard views are built from.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"airquality-dashboard/internal/aqi"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// measurement is a concentration cell; empty, NA and NaN cells decode to NaN.
type measurement float64

func (m *measurement) UnmarshalCSV(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		*m = measurement(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return eris.Wrapf(err, "invalid concentration %q", s)
	}
	if math.IsInf(f, 0) {
		f = math.NaN()
	}
	*m = measurement(f)
	return nil
}

// row mirrors the CSV columns the dashboard reads. Other columns are ignored.
type row struct {
	Datetime string      `csv:"datetime"`
	Station  string      `csv:"station"`
	PM25     measurement `csv:"PM2.5"`
	PM10     measurement `csv:"PM10"`
	SO2      measurement `csv:"SO2"`
	NO2      measurement `csv:"NO2"`
	CO       measurement `csv:"CO"`
	O3       measurement `csv:"O3"`
}

func emptyRow() row {
	nan := measurement(math.NaN())
	return row{PM25: nan, PM10: nan, SO2: nan, NO2: nan, CO: nan, O3: nan}
}

// Record is one hourly observation at a station. Missing values are NaN.
type Record struct {
	Time    time.Time
	Station string
	values  [6]float64
}

func pollutantIndex(p aqi.Pollutant) int {
	switch p {
	case aqi.PM25:
		return 0
	case aqi.PM10:
		return 1
	case aqi.SO2:
		return 2
	case aqi.NO2:
		return 3
	case aqi.CO:
		return 4
	case aqi.O3:
		return 5
	}
	return -1
}

// NewRecord builds a record. Pollutants absent from values are missing.
func NewRecord(t time.Time, station string, values map[aqi.Pollutant]float64) Record {
	r := Record{Time: t, Station: station}
	for i := range r.values {
		r.values[i] = math.NaN()
	}
	for p, v := range values {
		if i := pollutantIndex(p); i >= 0 {
			r.values[i] = v
		}
	}
	return r
}

// Value returns the concentration of p and whether it was measured.
func (r Record) Value(p aqi.Pollutant) (float64, bool) {
	i := pollutantIndex(p)
	if i < 0 || math.IsNaN(r.values[i]) {
		return math.NaN(), false
	}
	return r.values[i], true
}

// Dataset is an immutable set of records.
type Dataset struct {
	records    []Record
	stations   []string
	pollutants []aqi.Pollutant
}

// New creates a dataset from records. pollutants lists the columns present.
func New(records []Record, pollutants []aqi.Pollutant) *Dataset {
	d := &Dataset{records: records, pollutants: pollutants}
	seen := make(map[string]bool)
	for _, r := range records {
		if !seen[r.Station] {
			seen[r.Station] = true
			d.stations = append(d.stations, r.Station)
		}
	}
	return d
}

// Load reads the CSV file at path.
func Load(ctx context.Context, path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	ds, err := Decode(ctx, f)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	return ds, nil
}

// Decode parses CSV from r. The datetime and station columns are required;
// pollutant columns are optional.
func Decode(ctx context.Context, r io.Reader) (*Dataset, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if errors.Is(err, io.EOF) {
		return nil, eris.New("dataset: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read header")
	}

	header := make(map[string]bool)
	for _, h := range dec.Header() {
		header[h] = true
	}
	for _, col := range []string{"datetime", "station"} {
		if !header[col] {
			return nil, eris.Errorf("dataset: missing required column %q", col)
		}
	}
	var pollutants []aqi.Pollutant
	for _, p := range aqi.Pollutants() {
		if header[string(p)] {
			pollutants = append(pollutants, p)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw := emptyRow()
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: line %d", line)
		}

		t, err := parseTime(raw.Datetime)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: line %d", line)
		}

		records = append(records, Record{
			Time:    t,
			Station: raw.Station,
			values: [6]float64{
				float64(raw.PM25), float64(raw.PM10), float64(raw.SO2),
				float64(raw.NO2), float64(raw.CO), float64(raw.O3),
			},
		})
	}

	return New(records, pollutants), nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("unparseable datetime %q", s)
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Stations returns station names in first-seen order.
func (d *Dataset) Stations() []string {
	out := make([]string, len(d.stations))
	copy(out, d.stations)
	return out
}

// HasStation reports whether any record belongs to station.
func (d *Dataset) HasStation(station string) bool {
	for _, s := range d.stations {
		if s == station {
			return true
		}
	}
	return false
}

// AvailablePollutants returns the pollutant columns present in the input.
func (d *Dataset) AvailablePollutants() []aqi.Pollutant {
	out := make([]aqi.Pollutant, len(d.pollutants))
	copy(out, d.pollutants)
	return out
}

// Latest returns the most recent record time.
func (d *Dataset) Latest() (time.Time, bool) {
	var latest time.Time
	for _, r := range d.records {
		if r.Time.After(latest) {
			latest = r.Time
		}
	}
	return latest, len(d.records) > 0
}

// Since returns the records at or after t.
func (d *Dataset) Since(t time.Time) *Dataset {
	return d.filter(func(r Record) bool { return !r.Time.Before(t) })
}

// ForStation returns the records of one station.
func (d *Dataset) ForStation(station string) *Dataset {
	return d.filter(func(r Record) bool { return r.Station == station })
}

func (d *Dataset) filter(keep func(Record) bool) *Dataset {
	var out []Record
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return New(out, d.pollutants)
}
