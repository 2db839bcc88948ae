package weather

import (
	"encoding/json"
	"time"
)

// TempCategory is a coarse temperature bucket derived from the measured
// temperature in degrees Celsius.
type TempCategory string

const (
	TempFreezing TempCategory = "Freezing"
	TempCold     TempCategory = "Cold"
	TempMild     TempCategory = "Mild"
	TempWarm     TempCategory = "Warm"
	TempHot      TempCategory = "Hot"
)

// AQICategory is a coarse air-quality bucket derived from the composite AQI.
type AQICategory string

const (
	AQIVeryGood AQICategory = "Very Good"
	AQIGood     AQICategory = "Good"
	AQIModerate AQICategory = "Moderate"
	AQIPoor     AQICategory = "Poor"
	AQIVeryPoor AQICategory = "Very Poor"
)

// Coordinate is a resolved geographic position for a free-text city name.
type Coordinate struct {
	Lat  float64
	Lon  float64
	Name string
}

// RawObservation is one city's combined payload captured during a single
// extraction run. Both upstream payloads are kept verbatim; the transformer
// decides what to flatten.
type RawObservation struct {
	City       string          `json:"city"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Timestamp  time.Time       `json:"timestamp"`
	Weather    json.RawMessage `json:"weather"`
	AirQuality json.RawMessage `json:"air_quality"`
}

// WeatherRecord is one flattened weather row per city per snapshot.
type WeatherRecord struct {
	City               string
	Latitude           float64
	Longitude          float64
	Timestamp          time.Time
	Temperature        float64
	FeelsLike          float64
	Humidity           float64
	Pressure           float64
	WindSpeed          float64
	WindDirection      *float64 // absent in some payloads
	CloudsPercent      float64
	WeatherMain        string
	WeatherDescription string
	Sunrise            time.Time
	Sunset             time.Time

	// Derived fields.
	DayLength    float64
	TempCategory TempCategory
	HeatIndex    float64
}

// AirQualityRecord is one flattened air-quality row per city per snapshot.
type AirQualityRecord struct {
	City      string
	Timestamp time.Time
	CO        float64
	NO        float64
	NO2       float64
	O3        float64
	SO2       float64
	PM25      float64
	PM10      float64
	NH3       float64

	// Derived fields: per-pollutant normalized indices, the composite AQI
	// (max across the six indexed pollutants), and its category bucket.
	PM25Index float64
	PM10Index float64
	NO2Index  float64
	O3Index   float64
	COIndex   float64
	SO2Index  float64
	AQI       float64
	Category  AQICategory
}

// DailyCityStats is the per-city, per-calendar-date rollup recomputed by the
// loader after each append. Keyed by (City, Date).
type DailyCityStats struct {
	City              string  `json:"city"`
	Date              string  `json:"date"` // YYYY-MM-DD
	AvgTemperature    float64 `json:"avg_temperature"`
	MaxTemperature    float64 `json:"max_temperature"`
	MinTemperature    float64 `json:"min_temperature"`
	AvgHumidity       float64 `json:"avg_humidity"`
	AvgAQI            float64 `json:"avg_aqi"`
	DominantWeather   string  `json:"dominant_weather"`
	MeasurementsCount int     `json:"measurements_count"`
}
