package weather

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const (
	DefaultHorizonDays  = 90
	DefaultHistoryYears = 5

	// WindowDays is the half-width of the day-of-year window pooled across years.
	WindowDays = 7

	// intervalZ is the standard normal quantile bounding an 80% interval.
	intervalZ = 1.2815515655446004

	daysInYear = 366
)

var ErrInsufficientHistory = errors.New("insufficient weather history")

// Day is one observed day.
type Day struct {
	Date      time.Time
	TempMax   float64
	TempMin   float64
	Rainfall  float64
	Humidity  float64
	WindSpeed float64
}

// Band is a point forecast with its 80% interval.
type Band struct {
	Value float64 `json:"value"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ForecastDay is the forecast for one future date.
type ForecastDay struct {
	Date      string `json:"date"`
	TempMax   Band   `json:"temp_max"`
	TempMin   Band   `json:"temp_min"`
	Rainfall  Band   `json:"rainfall"`
	Humidity  Band   `json:"humidity"`
	WindSpeed Band   `json:"wind_speed"`
}

type parameter struct {
	value  func(Day) float64
	set    func(*ForecastDay, Band)
	lo, hi float64
}

var parameters = []parameter{
	{
		value: func(d Day) float64 { return d.TempMax },
		set:   func(f *ForecastDay, b Band) { f.TempMax = b },
		lo:    -10,
		hi:    50,
	},
	{
		value: func(d Day) float64 { return d.TempMin },
		set:   func(f *ForecastDay, b Band) { f.TempMin = b },
		lo:    -10,
		hi:    50,
	},
	{
		value: func(d Day) float64 { return d.Rainfall },
		set:   func(f *ForecastDay, b Band) { f.Rainfall = b },
		lo:    0,
		hi:    math.Inf(1),
	},
	{
		value: func(d Day) float64 { return d.Humidity },
		set:   func(f *ForecastDay, b Band) { f.Humidity = b },
		lo:    0,
		hi:    100,
	},
	{
		value: func(d Day) float64 { return d.WindSpeed },
		set:   func(f *ForecastDay, b Band) { f.WindSpeed = b },
		lo:    0,
		hi:    math.Inf(1),
	},
}

// Forecast predicts horizon days following the last observed day. Each
// parameter is the mean of every historical day within WindowDays of the
// same day of year, with a normal 80% interval, clipped to physical ranges.
func Forecast(history []Day, horizon int) ([]ForecastDay, error) {
	if len(history) == 0 {
		return nil, ErrInsufficientHistory
	}
	if horizon < 1 {
		return nil, nil
	}

	var buckets [daysInYear][]Day
	last := history[0].Date
	for _, d := range history {
		buckets[d.Date.YearDay()-1] = append(buckets[d.Date.YearDay()-1], d)
		if d.Date.After(last) {
			last = d.Date
		}
	}

	out := make([]ForecastDay, 0, horizon)
	samples := make([]float64, 0, len(history))
	for i := 1; i <= horizon; i++ {
		date := last.AddDate(0, 0, i)
		pool := window(&buckets, date.YearDay()-1)
		if len(pool) == 0 {
			return nil, ErrInsufficientHistory
		}

		day := ForecastDay{Date: date.Format(dateLayout)}
		for _, p := range parameters {
			samples = samples[:0]
			for _, d := range pool {
				samples = append(samples, p.value(d))
			}
			p.set(&day, band(samples, p.lo, p.hi))
		}
		out = append(out, day)
	}
	return out, nil
}

// window pools the buckets within WindowDays of idx, wrapping at year end.
func window(buckets *[daysInYear][]Day, idx int) []Day {
	var pool []Day
	for off := -WindowDays; off <= WindowDays; off++ {
		j := (idx + off + daysInYear) % daysInYear
		pool = append(pool, buckets[j]...)
	}
	return pool
}

func band(samples []float64, lo, hi float64) Band {
	mean, std := stat.MeanStdDev(samples, nil)
	if len(samples) < 2 {
		std = 0
	}
	return Band{
		Value: clip(mean, lo, hi),
		Lower: clip(mean-intervalZ*std, lo, hi),
		Upper: clip(mean+intervalZ*std, lo, hi),
	}
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
