package etl

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/akarpov91/weather-etl/internal/weather"
)

// csvTimeLayout is the timezone-naive timestamp format used in processed
// files.
const csvTimeLayout = "2006-01-02 15:04:05"

var weatherColumns = []string{
	"city", "latitude", "longitude", "timestamp", "temperature", "feels_like",
	"humidity", "pressure", "wind_speed", "wind_direction", "clouds_percent",
	"weather_main", "weather_description", "sunrise", "sunset", "day_length",
	"temp_category", "heat_index",
}

var airQualityColumns = []string{
	"city", "timestamp", "co", "no", "no2", "o3", "so2", "pm2_5", "pm10",
	"nh3", "pm2_5_index", "pm10_index", "no2_index", "o3_index", "co_index",
	"so2_index", "aqi", "aqi_category",
}

func writeWeatherCSV(path string, records []weather.WeatherRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		windDir := ""
		if r.WindDirection != nil {
			windDir = formatFloat(*r.WindDirection)
		}
		rows = append(rows, []string{
			r.City,
			formatFloat(r.Latitude),
			formatFloat(r.Longitude),
			r.Timestamp.UTC().Format(csvTimeLayout),
			formatFloat(r.Temperature),
			formatFloat(r.FeelsLike),
			formatFloat(r.Humidity),
			formatFloat(r.Pressure),
			formatFloat(r.WindSpeed),
			windDir,
			formatFloat(r.CloudsPercent),
			r.WeatherMain,
			r.WeatherDescription,
			r.Sunrise.UTC().Format(csvTimeLayout),
			r.Sunset.UTC().Format(csvTimeLayout),
			formatFloat(r.DayLength),
			string(r.TempCategory),
			formatFloat(r.HeatIndex),
		})
	}
	return writeCSV(path, weatherColumns, rows)
}

func writeAirQualityCSV(path string, records []weather.AirQualityRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.City,
			r.Timestamp.UTC().Format(csvTimeLayout),
			formatFloat(r.CO),
			formatFloat(r.NO),
			formatFloat(r.NO2),
			formatFloat(r.O3),
			formatFloat(r.SO2),
			formatFloat(r.PM25),
			formatFloat(r.PM10),
			formatFloat(r.NH3),
			formatFloat(r.PM25Index),
			formatFloat(r.PM10Index),
			formatFloat(r.NO2Index),
			formatFloat(r.O3Index),
			formatFloat(r.COIndex),
			formatFloat(r.SO2Index),
			formatFloat(r.AQI),
			string(r.Category),
		})
	}
	return writeCSV(path, airQualityColumns, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// row wraps one CSV record with header-indexed field access.
type row struct {
	path   string
	index  map[string]int
	fields []string
}

func (r row) str(col string) (string, error) {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return "", fmt.Errorf("%s: missing column %q", r.path, col)
	}
	return r.fields[i], nil
}

func (r row) float(col string) (float64, error) {
	s, err := r.str(col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: column %q: %w", r.path, col, err)
	}
	return v, nil
}

func (r row) time(col string) (time.Time, error) {
	s, err := r.str(col)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(csvTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: column %q: %w", r.path, col, err)
	}
	return t, nil
}

func readCSVRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}

	rows := make([]row, 0, len(records)-1)
	for _, fields := range records[1:] {
		rows = append(rows, row{path: path, index: index, fields: fields})
	}
	return rows, nil
}

func readWeatherCSV(path string) ([]weather.WeatherRecord, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]weather.WeatherRecord, 0, len(rows))
	for _, r := range rows {
		var rec weather.WeatherRecord
		var ferr error

		get := func(col string) float64 {
			v, err := r.float(col)
			if err != nil && ferr == nil {
				ferr = err
			}
			return v
		}
		getStr := func(col string) string {
			v, err := r.str(col)
			if err != nil && ferr == nil {
				ferr = err
			}
			return v
		}
		getTime := func(col string) time.Time {
			v, err := r.time(col)
			if err != nil && ferr == nil {
				ferr = err
			}
			return v
		}

		rec.City = getStr("city")
		rec.Latitude = get("latitude")
		rec.Longitude = get("longitude")
		rec.Timestamp = getTime("timestamp")
		rec.Temperature = get("temperature")
		rec.FeelsLike = get("feels_like")
		rec.Humidity = get("humidity")
		rec.Pressure = get("pressure")
		rec.WindSpeed = get("wind_speed")
		if s := getStr("wind_direction"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil && ferr == nil {
				ferr = fmt.Errorf("%s: column %q: %w", path, "wind_direction", err)
			}
			rec.WindDirection = &v
		}
		rec.CloudsPercent = get("clouds_percent")
		rec.WeatherMain = getStr("weather_main")
		rec.WeatherDescription = getStr("weather_description")
		rec.Sunrise = getTime("sunrise")
		rec.Sunset = getTime("sunset")
		rec.DayLength = get("day_length")
		rec.TempCategory = weather.TempCategory(getStr("temp_category"))
		rec.HeatIndex = get("heat_index")

		if ferr != nil {
			return nil, ferr
		}
		records = append(records, rec)
	}
	return records, nil
}

func readAirQualityCSV(path string) ([]weather.AirQualityRecord, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]weather.AirQualityRecord, 0, len(rows))
	for _, r := range rows {
		var rec weather.AirQualityRecord
		var ferr error

		get := func(col string) float64 {
			v, err := r.float(col)
			if err != nil && ferr == nil {
				ferr = err
			}
			return v
		}
		getStr := func(col string) string {
			v, err := r.str(col)
			if err != nil && ferr == nil {
				ferr = err
			}
			return v
		}
		getTime := func(col string) time.Time {
			v, err := r.time(col)
			if err != nil && ferr == nil {
				ferr = err
			}
			return v
		}

		rec.City = getStr("city")
		rec.Timestamp = getTime("timestamp")
		rec.CO = get("co")
		rec.NO = get("no")
		rec.NO2 = get("no2")
		rec.O3 = get("o3")
		rec.SO2 = get("so2")
		rec.PM25 = get("pm2_5")
		rec.PM10 = get("pm10")
		rec.NH3 = get("nh3")
		rec.PM25Index = get("pm2_5_index")
		rec.PM10Index = get("pm10_index")
		rec.NO2Index = get("no2_index")
		rec.O3Index = get("o3_index")
		rec.COIndex = get("co_index")
		rec.SO2Index = get("so2_index")
		rec.AQI = get("aqi")
		rec.Category = weather.AQICategory(getStr("aqi_category"))

		if ferr != nil {
			return nil, ferr
		}
		records = append(records, rec)
	}
	return records, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
