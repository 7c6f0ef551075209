// Package weather forecasts daily conditions for a trip destination from
// several years of Open-Meteo history and summarizes the outlook for travel
// planning.
package weather
