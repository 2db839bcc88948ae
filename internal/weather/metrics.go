package weather

import (
	"math"
	"time"
)

// Reference maxima used to normalize pollutant concentrations to a 0-100
// sub-index. Units match the upstream payload (µg/m³) and are deliberately
// not converted.
var pollutantMax = map[string]float64{
	"pm2_5": 250,
	"pm10":  430,
	"no2":   400,
	"o3":    240,
	"co":    50,
	"so2":   350,
}

// HeatIndex computes a simplified Steadman feels-like temperature in Celsius
// from temperature (°C) and relative humidity (%).
func HeatIndex(tempC, humidityPct float64) float64 {
	vp := 6.11 * math.Exp(5417.753*(1/273.16-1/(273.15+tempC))) * humidityPct / 100
	return tempC + 0.5555*(vp-10)
}

// DayLength returns the number of hours between sunrise and sunset.
func DayLength(sunrise, sunset time.Time) float64 {
	return sunset.Sub(sunrise).Hours()
}

// CategorizeTemp buckets a temperature into one of the five fixed categories.
// Boundaries at 0/10/20/30 °C are upper-bound inclusive, so 10.0 is still Cold.
func CategorizeTemp(tempC float64) TempCategory {
	switch {
	case tempC <= 0:
		return TempFreezing
	case tempC <= 10:
		return TempCold
	case tempC <= 20:
		return TempMild
	case tempC <= 30:
		return TempWarm
	default:
		return TempHot
	}
}

// PollutantIndex normalizes a concentration against the pollutant's reference
// maximum onto a 0-100 scale, clipped at both ends. Unknown pollutants map
// to 0.
func PollutantIndex(pollutant string, concentration float64) float64 {
	refMax, ok := pollutantMax[pollutant]
	if !ok {
		return 0
	}
	idx := concentration / refMax * 100
	if idx < 0 {
		return 0
	}
	if idx > 100 {
		return 100
	}
	return idx
}

// OverallAQI is the max across per-pollutant sub-indices.
func OverallAQI(indices ...float64) float64 {
	var aqi float64
	for _, idx := range indices {
		if idx > aqi {
			aqi = idx
		}
	}
	return aqi
}

// CategorizeAQI buckets a composite AQI into one of the five fixed categories.
// Boundaries at 20/40/60/80 are upper-bound inclusive.
func CategorizeAQI(aqi float64) AQICategory {
	switch {
	case aqi <= 20:
		return AQIVeryGood
	case aqi <= 40:
		return AQIGood
	case aqi <= 60:
		return AQIModerate
	case aqi <= 80:
		return AQIPoor
	default:
		return AQIVeryPoor
	}
}

// Derive fills the computed fields of a WeatherRecord in place.
func (r *WeatherRecord) Derive() {
	r.DayLength = DayLength(r.Sunrise, r.Sunset)
	r.TempCategory = CategorizeTemp(r.Temperature)
	r.HeatIndex = HeatIndex(r.Temperature, r.Humidity)
}

// Derive fills the computed fields of an AirQualityRecord in place.
func (r *AirQualityRecord) Derive() {
	r.PM25Index = PollutantIndex("pm2_5", r.PM25)
	r.PM10Index = PollutantIndex("pm10", r.PM10)
	r.NO2Index = PollutantIndex("no2", r.NO2)
	r.O3Index = PollutantIndex("o3", r.O3)
	r.COIndex = PollutantIndex("co", r.CO)
	r.SO2Index = PollutantIndex("so2", r.SO2)
	r.AQI = OverallAQI(r.PM25Index, r.PM10Index, r.NO2Index, r.O3Index, r.COIndex, r.SO2Index)
	r.Category = CategorizeAQI(r.AQI)
}
