package etl

import (
	"context"
	"log"
	"time"

	"github.com/akarpov91/weather-etl/internal/store"
)

// Loader appends the latest processed CSV pair into the measurement tables
// and recomputes the daily rollup for the current date.
type Loader struct {
	processedDir string
	store        *store.SQLiteStore

	now func() time.Time
}

func NewLoader(processedDir string, st *store.SQLiteStore) *Loader {
	return &Loader{
		processedDir: processedDir,
		store:        st,
		now:          time.Now,
	}
}

// Load locates the latest processed weather and air-quality CSVs
// independently; when either class is missing it logs and returns without
// touching any table. Rows are appended without dedup; repeated loads of the
// same files duplicate measurement rows.
func (l *Loader) Load(ctx context.Context) error {
	weatherPath, err := LatestFile(l.processedDir, processedWeatherPrefix)
	if err != nil {
		return err
	}
	airPath, err := LatestFile(l.processedDir, processedAirPrefix)
	if err != nil {
		return err
	}
	if weatherPath == "" || airPath == "" {
		log.Println("load: no processed data files found")
		return nil
	}

	weatherRecords, err := readWeatherCSV(weatherPath)
	if err != nil {
		return err
	}
	airRecords, err := readAirQualityCSV(airPath)
	if err != nil {
		return err
	}

	if err := l.store.AppendWeather(ctx, weatherRecords); err != nil {
		return err
	}
	if err := l.store.AppendAirQuality(ctx, airRecords); err != nil {
		return err
	}

	// Timestamps are persisted as naive UTC, so "today" is the UTC date.
	if err := l.store.RecomputeDailyStats(ctx, l.now().UTC()); err != nil {
		return err
	}

	log.Printf("load: appended %d weather and %d air-quality rows", len(weatherRecords), len(airRecords))
	return nil
}
