package dataset

import (
	"math"
	"sort"

	"airquality-dashboard/internal/aqi"
	"airquality-dashboard/internal/models"
)

// mean accumulates a NaN-skipping average.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	m.sum += v
	m.n++
}

// value is NaN when nothing was added.
func (m mean) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}

// StationMean is a station's average concentration of one pollutant; Mean is
// NaN when the station has no measurements.
type StationMean struct {
	Station string
	Mean    float64
}

// StationMeans averages p per station, in station order.
func (d *Dataset) StationMeans(p aqi.Pollutant) []StationMean {
	acc := make(map[string]*mean, len(d.stations))
	for _, s := range d.stations {
		acc[s] = &mean{}
	}
	for _, r := range d.records {
		if v, ok := r.Value(p); ok {
			acc[r.Station].add(v)
		}
	}

	out := make([]StationMean, 0, len(d.stations))
	for _, s := range d.stations {
		out = append(out, StationMean{Station: s, Mean: acc[s].value()})
	}
	return out
}

// MonthlyTrend averages each pollutant per calendar month, sorted by month.
func (d *Dataset) MonthlyTrend(pollutants []aqi.Pollutant) []models.TrendPoint {
	months := make(map[string][]mean)
	for _, r := range d.records {
		key := r.Time.Format("2006-01")
		acc, ok := months[key]
		if !ok {
			acc = make([]mean, len(pollutants))
			months[key] = acc
		}
		for i, p := range pollutants {
			if v, ok := r.Value(p); ok {
				acc[i].add(v)
			}
		}
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]models.TrendPoint, 0, len(keys))
	for _, k := range keys {
		values := make(map[aqi.Pollutant]*float64, len(pollutants))
		for i, p := range pollutants {
			values[p] = models.Nullable(months[k][i].value())
		}
		points = append(points, models.TrendPoint{Month: k, Values: values})
	}
	return points
}

// StationAverages averages every pollutant per station and flags the station
// with the highest summed average. It returns the highest station's name,
// empty when there are no stations.
func (d *Dataset) StationAverages(pollutants []aqi.Pollutant) ([]models.StationAverage, string) {
	out := make([]models.StationAverage, 0, len(d.stations))
	index := make(map[string]int, len(d.stations))
	for i, s := range d.stations {
		index[s] = i
		out = append(out, models.StationAverage{Station: s, Means: make(map[aqi.Pollutant]*float64)})
	}

	for _, p := range pollutants {
		for _, sm := range d.StationMeans(p) {
			avg := &out[index[sm.Station]]
			avg.Means[p] = models.Nullable(sm.Mean)
			if !math.IsNaN(sm.Mean) {
				avg.Total += sm.Mean
			}
		}
	}

	highest := -1
	for i := range out {
		if highest < 0 || out[i].Total > out[highest].Total {
			highest = i
		}
	}
	if highest < 0 {
		return out, ""
	}
	out[highest].Highest = true
	return out, out[highest].Station
}

// HourlyMeans averages p by hour of day. Hours without data are NaN.
func (d *Dataset) HourlyMeans(p aqi.Pollutant) [24]float64 {
	var acc [24]mean
	for _, r := range d.records {
		if v, ok := r.Value(p); ok {
			acc[r.Time.Hour()].add(v)
		}
	}
	var out [24]float64
	for h := range acc {
		out[h] = acc[h].value()
	}
	return out
}

// HourlyProfile summarises p by hour of day: best and worst hour plus
// morning (06-11), afternoon (12-17) and night (18-05) averages of the
// hourly means.
func (d *Dataset) HourlyProfile(p aqi.Pollutant) models.HourlyView {
	hourly := d.HourlyMeans(p)
	view := models.HourlyView{
		Pollutant: p,
		Unit:      aqi.Unit(p),
		Hours:     make([]models.HourlyMean, 0, 24),
	}

	best, worst := -1, -1
	for h, v := range hourly {
		view.Hours = append(view.Hours, models.HourlyMean{Hour: h, Mean: models.Nullable(v)})
		if math.IsNaN(v) {
			continue
		}
		if best < 0 || v < hourly[best] {
			best = h
		}
		if worst < 0 || v > hourly[worst] {
			worst = h
		}
	}
	if best >= 0 {
		view.BestHour = &best
		view.BestValue = models.Nullable(hourly[best])
		view.WorstHour = &worst
		view.WorstValue = models.Nullable(hourly[worst])
	}

	view.Morning = models.Nullable(meanOfHours(hourly, 6, 12))
	view.Afternoon = models.Nullable(meanOfHours(hourly, 12, 18))
	view.Night = models.Nullable(meanOfHours(hourly, 18, 24, 0, 6))
	return view
}

// meanOfHours averages hourly values over [from, to) range pairs.
func meanOfHours(hourly [24]float64, ranges ...int) float64 {
	var m mean
	for i := 0; i+1 < len(ranges); i += 2 {
		for h := ranges[i]; h < ranges[i+1]; h++ {
			m.add(hourly[h])
		}
	}
	return m.value()
}
