package weather

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	summaryDays = 30
	monthDays   = 30
	months      = 3
	periodDays  = 7

	rainyMM      = 1.0
	heavyRainMM  = 10.0
	extremeHeatC = 35.0
	coolC        = 20.0
	highHumidity = 80.0

	idealTempC    = 25.0
	idealHumidity = 60.0
)

// Summary describes the first month of a forecast for a traveller.
type Summary struct {
	AvgTempMax       float64  `json:"avg_temp_max"`
	AvgTempMin       float64  `json:"avg_temp_min"`
	AvgRainfall      float64  `json:"avg_rainfall"`
	AvgHumidity      float64  `json:"avg_humidity"`
	AvgWindSpeed     float64  `json:"avg_wind_speed"`
	RainyDays        int      `json:"rainy_days"`
	HeavyRainDays    int      `json:"heavy_rain_days"`
	ExtremeHeatDays  int      `json:"extreme_heat_days"`
	CoolDays         int      `json:"cool_days"`
	HighHumidityDays int      `json:"high_humidity_days"`
	MonthlyBreakdown []Month  `json:"monthly_breakdown"`
	BestPeriod       *Period  `json:"best_weather_period"`
	Recommendations  []string `json:"recommendations"`
	Recommendation   string   `json:"recommendation"`
}

// Month summarizes a 30-day block.
type Month struct {
	Month         int     `json:"month"`
	AvgTempMax    float64 `json:"avg_temp_max"`
	AvgTempMin    float64 `json:"avg_temp_min"`
	TotalRainfall float64 `json:"total_rainfall"`
	RainyDays     int     `json:"rainy_days"`
	AvgHumidity   float64 `json:"avg_humidity"`
}

// Period is the most comfortable week in the first month.
type Period struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	AvgTemp   float64 `json:"avg_temp"`
	RainyDays int     `json:"rainy_days"`
	Score     float64 `json:"score"`
}

// Summarize returns nil for an empty forecast.
func Summarize(forecast []ForecastDay) *Summary {
	if len(forecast) == 0 {
		return nil
	}
	first := forecast[:min(summaryDays, len(forecast))]

	s := &Summary{
		AvgTempMax:       round1(stat.Mean(series(first, tempMax), nil)),
		AvgTempMin:       round1(stat.Mean(series(first, tempMin), nil)),
		AvgRainfall:      round1(stat.Mean(series(first, rainfall), nil)),
		AvgHumidity:      round1(stat.Mean(series(first, humidity), nil)),
		AvgWindSpeed:     round1(stat.Mean(series(first, windSpeed), nil)),
		RainyDays:        count(first, rainfall, func(v float64) bool { return v > rainyMM }),
		HeavyRainDays:    count(first, rainfall, func(v float64) bool { return v > heavyRainMM }),
		ExtremeHeatDays:  count(first, tempMax, func(v float64) bool { return v > extremeHeatC }),
		CoolDays:         count(first, tempMax, func(v float64) bool { return v < coolC }),
		HighHumidityDays: count(first, humidity, func(v float64) bool { return v > highHumidity }),
		MonthlyBreakdown: []Month{},
	}

	for m := 0; m < months && m*monthDays < len(forecast); m++ {
		block := forecast[m*monthDays : min((m+1)*monthDays, len(forecast))]
		s.MonthlyBreakdown = append(s.MonthlyBreakdown, Month{
			Month:         m + 1,
			AvgTempMax:    round1(stat.Mean(series(block, tempMax), nil)),
			AvgTempMin:    round1(stat.Mean(series(block, tempMin), nil)),
			TotalRainfall: round1(floats.Sum(series(block, rainfall))),
			RainyDays:     count(block, rainfall, func(v float64) bool { return v > rainyMM }),
			AvgHumidity:   round1(stat.Mean(series(block, humidity), nil)),
		})
	}

	s.BestPeriod = bestPeriod(first)
	s.Recommendations = recommend(s)
	s.Recommendation = strings.Join(s.Recommendations, ". ") + "."
	return s
}

// bestPeriod scores every 7-day window by closeness to 25°C and 60%
// humidity with a penalty per rainy day. The earliest best window wins.
func bestPeriod(days []ForecastDay) *Period {
	if len(days) < periodDays {
		return nil
	}

	var best *Period
	bestScore := math.Inf(-1)
	for i := 0; i+periodDays <= len(days); i++ {
		week := days[i : i+periodDays]
		temp := stat.Mean(series(week, tempMax), nil)
		rainy := count(week, rainfall, func(v float64) bool { return v > rainyMM })
		hum := stat.Mean(series(week, humidity), nil)

		score := 100 - 2*math.Abs(temp-idealTempC) - 10*float64(rainy) - 0.5*math.Abs(hum-idealHumidity)
		if score > bestScore {
			bestScore = score
			best = &Period{
				StartDate: week[0].Date,
				EndDate:   week[periodDays-1].Date,
				AvgTemp:   round1(temp),
				RainyDays: rainy,
				Score:     round1(score),
			}
		}
	}
	return best
}

func recommend(s *Summary) []string {
	var out []string

	switch {
	case s.RainyDays > 15:
		out = append(out, "Heavy monsoon season expected - pack waterproof gear and plan indoor activities")
	case s.RainyDays > 8:
		out = append(out, "Moderate rainfall expected - carry umbrella and rain jacket")
	case s.RainyDays < 3:
		out = append(out, "Dry season - perfect for outdoor activities")
	}

	switch {
	case s.ExtremeHeatDays > 20:
		out = append(out, "Very hot weather - plan activities during early morning/evening hours")
	case s.ExtremeHeatDays > 10:
		out = append(out, "Hot weather expected - stay hydrated and use sun protection")
	case s.AvgTempMax < coolC:
		out = append(out, "Cool weather - pack warm clothing for comfortable travel")
	}

	if s.HighHumidityDays > 20 {
		out = append(out, "High humidity expected - choose breathable fabrics")
	}

	if len(out) == 0 {
		out = append(out, "Pleasant weather conditions expected - ideal for sightseeing and outdoor activities")
	}
	return out
}

func tempMax(d ForecastDay) float64   { return d.TempMax.Value }
func tempMin(d ForecastDay) float64   { return d.TempMin.Value }
func rainfall(d ForecastDay) float64  { return d.Rainfall.Value }
func humidity(d ForecastDay) float64  { return d.Humidity.Value }
func windSpeed(d ForecastDay) float64 { return d.WindSpeed.Value }

func series(days []ForecastDay, get func(ForecastDay) float64) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = get(d)
	}
	return out
}

func count(days []ForecastDay, get func(ForecastDay) float64, pred func(float64) bool) int {
	n := 0
	for _, d := range days {
		if pred(get(d)) {
			n++
		}
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
