package store

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/akarpov91/weather-etl/internal/weather"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a query matches no rows.
var ErrNotFound = errors.New("no data for requested city")

// tsLayout is the timezone-naive timestamp format used in both CSVs and
// table columns; SQLite's date() understands it directly.
const tsLayout = "2006-01-02 15:04:05"

// SQLiteStore persists measurements and daily rollups in a single SQLite
// file (pure Go driver, modernc.org/sqlite).
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Println("warning: could not set WAL mode:", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the three tables if they do not exist. Safe to call
// repeatedly.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS weather_measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			city TEXT,
			latitude REAL,
			longitude REAL,
			timestamp TIMESTAMP,
			temperature REAL,
			feels_like REAL,
			humidity REAL,
			pressure REAL,
			wind_speed REAL,
			wind_direction REAL,
			clouds_percent REAL,
			weather_main TEXT,
			weather_description TEXT,
			sunrise TIMESTAMP,
			sunset TIMESTAMP,
			day_length REAL,
			temp_category TEXT,
			heat_index REAL
		)`,
		`CREATE TABLE IF NOT EXISTS air_quality_measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			city TEXT,
			timestamp TIMESTAMP,
			co REAL,
			no REAL,
			no2 REAL,
			o3 REAL,
			so2 REAL,
			pm2_5 REAL,
			pm10 REAL,
			nh3 REAL,
			pm2_5_index REAL,
			pm10_index REAL,
			no2_index REAL,
			o3_index REAL,
			co_index REAL,
			so2_index REAL,
			aqi REAL,
			aqi_category TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS city_daily_stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			city TEXT,
			date DATE,
			avg_temperature REAL,
			max_temperature REAL,
			min_temperature REAL,
			avg_humidity REAL,
			avg_aqi REAL,
			dominant_weather TEXT,
			measurements_count INTEGER,
			UNIQUE (city, date)
		)`,
	}

	for _, ddl := range schemas {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// AppendWeather inserts weather rows as-is. No dedup: loading the same file
// twice duplicates rows.
func (s *SQLiteStore) AppendWeather(ctx context.Context, records []weather.WeatherRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO weather_measurements (
		city, latitude, longitude, timestamp, temperature, feels_like, humidity,
		pressure, wind_speed, wind_direction, clouds_percent, weather_main,
		weather_description, sunrise, sunset, day_length, temp_category, heat_index
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		var windDir interface{}
		if r.WindDirection != nil {
			windDir = *r.WindDirection
		}
		if _, err := stmt.ExecContext(ctx,
			r.City, r.Latitude, r.Longitude, r.Timestamp.Format(tsLayout),
			r.Temperature, r.FeelsLike, r.Humidity, r.Pressure,
			r.WindSpeed, windDir, r.CloudsPercent, r.WeatherMain,
			r.WeatherDescription, r.Sunrise.Format(tsLayout), r.Sunset.Format(tsLayout),
			r.DayLength, string(r.TempCategory), r.HeatIndex,
		); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// AppendAirQuality inserts air-quality rows as-is.
func (s *SQLiteStore) AppendAirQuality(ctx context.Context, records []weather.AirQualityRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO air_quality_measurements (
		city, timestamp, co, no, no2, o3, so2, pm2_5, pm10, nh3,
		pm2_5_index, pm10_index, no2_index, o3_index, co_index, so2_index,
		aqi, aqi_category
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.City, r.Timestamp.Format(tsLayout),
			r.CO, r.NO, r.NO2, r.O3, r.SO2, r.PM25, r.PM10, r.NH3,
			r.PM25Index, r.PM10Index, r.NO2Index, r.O3Index, r.COIndex, r.SO2Index,
			r.AQI, string(r.Category),
		); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// RecomputeDailyStats rebuilds city_daily_stats for the given calendar date
// from whatever measurement rows exist for it. Upserts keyed by (city, date);
// stats for other dates are never touched. Recomputing over unchanged rows is
// idempotent.
func (s *SQLiteStore) RecomputeDailyStats(ctx context.Context, day time.Time) error {
	date := day.Format("2006-01-02")

	_, err := s.db.ExecContext(ctx, `INSERT INTO city_daily_stats (
		city, date, avg_temperature, max_temperature, min_temperature,
		avg_humidity, avg_aqi, dominant_weather, measurements_count
	)
	SELECT
		w.city,
		date(w.timestamp) AS date,
		avg(w.temperature),
		max(w.temperature),
		min(w.temperature),
		avg(w.humidity),
		avg(a.aqi),
		w.weather_main,
		count(*)
	FROM weather_measurements w
	LEFT JOIN air_quality_measurements a
		ON w.city = a.city
		AND date(w.timestamp) = date(a.timestamp)
	WHERE date(w.timestamp) = ?
	GROUP BY w.city, date(w.timestamp)
	ON CONFLICT (city, date) DO UPDATE SET
		avg_temperature = excluded.avg_temperature,
		max_temperature = excluded.max_temperature,
		min_temperature = excluded.min_temperature,
		avg_humidity = excluded.avg_humidity,
		avg_aqi = excluded.avg_aqi,
		dominant_weather = excluded.dominant_weather,
		measurements_count = excluded.measurements_count`, date)
	return err
}

// DailyStats returns the rollup row for one city and date (YYYY-MM-DD).
func (s *SQLiteStore) DailyStats(ctx context.Context, city, date string) (weather.DailyCityStats, error) {
	var st weather.DailyCityStats
	var statsDate time.Time
	var avgAQI sql.NullFloat64

	err := s.db.QueryRowContext(ctx, `SELECT
		city, date, avg_temperature, max_temperature, min_temperature,
		avg_humidity, avg_aqi, dominant_weather, measurements_count
	FROM city_daily_stats WHERE city = ? AND date = ?`, city, date).Scan(
		&st.City, &statsDate, &st.AvgTemperature, &st.MaxTemperature,
		&st.MinTemperature, &st.AvgHumidity, &avgAQI,
		&st.DominantWeather, &st.MeasurementsCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.DailyCityStats{}, ErrNotFound
	}
	if err != nil {
		return weather.DailyCityStats{}, err
	}

	// The DATE column comes back as time.Time; the record keeps YYYY-MM-DD.
	st.Date = statsDate.Format("2006-01-02")

	// avg_aqi is NULL when no air-quality rows matched the join.
	if avgAQI.Valid {
		st.AvgAQI = avgAQI.Float64
	}
	return st, nil
}

// LatestWeatherByCity returns the most recently inserted weather row for a
// city.
func (s *SQLiteStore) LatestWeatherByCity(ctx context.Context, city string) (weather.WeatherRecord, error) {
	var r weather.WeatherRecord
	var category string
	var windDir sql.NullFloat64

	// The driver converts TIMESTAMP-decltype columns to time.Time, so the
	// time fields scan directly.
	err := s.db.QueryRowContext(ctx, `SELECT
		city, latitude, longitude, timestamp, temperature, feels_like, humidity,
		pressure, wind_speed, wind_direction, clouds_percent, weather_main,
		weather_description, sunrise, sunset, day_length, temp_category, heat_index
	FROM weather_measurements WHERE city = ? ORDER BY id DESC LIMIT 1`, city).Scan(
		&r.City, &r.Latitude, &r.Longitude, &r.Timestamp, &r.Temperature, &r.FeelsLike,
		&r.Humidity, &r.Pressure, &r.WindSpeed, &windDir, &r.CloudsPercent,
		&r.WeatherMain, &r.WeatherDescription, &r.Sunrise, &r.Sunset,
		&r.DayLength, &category, &r.HeatIndex,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.WeatherRecord{}, ErrNotFound
	}
	if err != nil {
		return weather.WeatherRecord{}, err
	}

	if windDir.Valid {
		v := windDir.Float64
		r.WindDirection = &v
	}
	r.TempCategory = weather.TempCategory(category)
	return r, nil
}

// MeasurementCounts reports the total number of rows in both measurement
// tables.
func (s *SQLiteStore) MeasurementCounts(ctx context.Context) (weatherRows, airRows int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM weather_measurements`).Scan(&weatherRows); err != nil {
		return 0, 0, err
	}
	if err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM air_quality_measurements`).Scan(&airRows); err != nil {
		return 0, 0, err
	}
	return weatherRows, airRows, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
