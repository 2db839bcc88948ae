package etl

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/akarpov91/weather-etl/internal/weather"
)

// Transformer flattens the latest raw snapshot into the two tabular datasets
// and computes the derived fields.
type Transformer struct {
	rawDir       string
	processedDir string

	now func() time.Time
}

func NewTransformer(rawDir, processedDir string) *Transformer {
	return &Transformer{
		rawDir:       rawDir,
		processedDir: processedDir,
		now:          time.Now,
	}
}

// Transform reads the latest raw snapshot and writes the processed weather
// and air-quality CSVs. When no snapshot exists it returns empty paths and a
// nil error. Output files are stamped with the current time, not the
// snapshot's.
func (t *Transformer) Transform() (weatherPath, airPath string, err error) {
	snapshot, err := LatestFile(t.rawDir, rawFilePrefix)
	if err != nil {
		return "", "", err
	}
	if snapshot == "" {
		log.Println("transform: no raw snapshot found")
		return "", "", nil
	}

	data, err := os.ReadFile(snapshot)
	if err != nil {
		return "", "", err
	}

	var observations []weather.RawObservation
	if err := json.Unmarshal(data, &observations); err != nil {
		return "", "", fmt.Errorf("parse snapshot %s: %w", snapshot, err)
	}

	weatherRecords := make([]weather.WeatherRecord, 0, len(observations))
	airRecords := make([]weather.AirQualityRecord, 0, len(observations))

	for _, obs := range observations {
		wr, err := flattenWeather(obs)
		if err != nil {
			return "", "", err
		}
		wr.Derive()
		weatherRecords = append(weatherRecords, wr)

		ar, err := flattenAirQuality(obs)
		if err != nil {
			return "", "", err
		}
		ar.Derive()
		airRecords = append(airRecords, ar)
	}

	if err := os.MkdirAll(t.processedDir, 0o755); err != nil {
		return "", "", err
	}

	stamp := t.now().Format(fileTimestampLayout)
	weatherPath = filepath.Join(t.processedDir, fmt.Sprintf("%s%s.csv", processedWeatherPrefix, stamp))
	airPath = filepath.Join(t.processedDir, fmt.Sprintf("%s%s.csv", processedAirPrefix, stamp))

	if err := writeWeatherCSV(weatherPath, weatherRecords); err != nil {
		return "", "", err
	}
	if err := writeAirQualityCSV(airPath, airRecords); err != nil {
		return "", "", err
	}

	log.Printf("transform: wrote %d rows to %s and %s", len(weatherRecords), weatherPath, airPath)
	return weatherPath, airPath, nil
}

// flattenWeather pulls the tabular weather fields out of one observation's
// raw payload.
func flattenWeather(obs weather.RawObservation) (weather.WeatherRecord, error) {
	var payload struct {
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64  `json:"speed"`
			Deg   *float64 `json:"deg"`
		} `json:"wind"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Sys struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
	}

	if err := json.Unmarshal(obs.Weather, &payload); err != nil {
		return weather.WeatherRecord{}, fmt.Errorf("parse weather payload for %s: %w", obs.City, err)
	}
	if len(payload.Weather) == 0 {
		return weather.WeatherRecord{}, fmt.Errorf("weather payload for %s has no condition entry", obs.City)
	}

	return weather.WeatherRecord{
		City:               obs.City,
		Latitude:           obs.Latitude,
		Longitude:          obs.Longitude,
		Timestamp:          obs.Timestamp,
		Temperature:        payload.Main.Temp,
		FeelsLike:          payload.Main.FeelsLike,
		Humidity:           payload.Main.Humidity,
		Pressure:           payload.Main.Pressure,
		WindSpeed:          payload.Wind.Speed,
		WindDirection:      payload.Wind.Deg,
		CloudsPercent:      payload.Clouds.All,
		WeatherMain:        payload.Weather[0].Main,
		WeatherDescription: payload.Weather[0].Description,
		Sunrise:            time.Unix(payload.Sys.Sunrise, 0).UTC(),
		Sunset:             time.Unix(payload.Sys.Sunset, 0).UTC(),
	}, nil
}

// flattenAirQuality pulls the pollutant concentrations out of the first
// component entry of one observation's air-quality payload.
func flattenAirQuality(obs weather.RawObservation) (weather.AirQualityRecord, error) {
	var payload struct {
		List []struct {
			Components map[string]float64 `json:"components"`
		} `json:"list"`
	}

	if err := json.Unmarshal(obs.AirQuality, &payload); err != nil {
		return weather.AirQualityRecord{}, fmt.Errorf("parse air quality payload for %s: %w", obs.City, err)
	}
	if len(payload.List) == 0 {
		return weather.AirQualityRecord{}, fmt.Errorf("air quality payload for %s has no component entry", obs.City)
	}

	components := payload.List[0].Components
	return weather.AirQualityRecord{
		City:      obs.City,
		Timestamp: obs.Timestamp,
		CO:        components["co"],
		NO:        components["no"],
		NO2:       components["no2"],
		O3:        components["o3"],
		SO2:       components["so2"],
		PM25:      components["pm2_5"],
		PM10:      components["pm10"],
		NH3:       components["nh3"],
	}, nil
}
