package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/akarpov91/weather-etl/internal/store"
	"github.com/akarpov91/weather-etl/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the read-only status handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, st *store.SQLiteStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/measurements/latest", func(c *fiber.Ctx) error {
		var q cityQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := st.LatestWeatherByCity(c.Context(), q.City)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no measurements for requested city")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch measurements")
		}

		return c.JSON(toMeasurementResponse(rec))
	})

	v1.Get("/stats/daily", func(c *fiber.Ctx) error {
		var q dailyStatsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		date := q.Date
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		stats, err := st.DailyStats(c.Context(), q.City, date)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no daily stats for requested city and date")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch daily stats")
		}

		return c.JSON(stats)
	})
}

// cityQuery holds the query parameter identifying a city.
type cityQuery struct {
	City string `validate:"required"`
}

func (q *cityQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")
	return validate.Struct(q)
}

// dailyStatsQuery holds query parameters for the daily stats endpoint.
// Date is optional and defaults to today.
type dailyStatsQuery struct {
	City string `validate:"required"`
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

func (q *dailyStatsQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")
	q.Date = c.Query("date")
	return validate.Struct(q)
}

// measurementResponse is the JSON shape of one weather measurement row.
type measurementResponse struct {
	City               string   `json:"city"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	Timestamp          string   `json:"timestamp"`
	Temperature        float64  `json:"temperature"`
	FeelsLike          float64  `json:"feels_like"`
	Humidity           float64  `json:"humidity"`
	Pressure           float64  `json:"pressure"`
	WindSpeed          float64  `json:"wind_speed"`
	WindDirection      *float64 `json:"wind_direction,omitempty"`
	CloudsPercent      float64  `json:"clouds_percent"`
	WeatherMain        string   `json:"weather_main"`
	WeatherDescription string   `json:"weather_description"`
	Sunrise            string   `json:"sunrise"`
	Sunset             string   `json:"sunset"`
	DayLength          float64  `json:"day_length"`
	TempCategory       string   `json:"temp_category"`
	HeatIndex          float64  `json:"heat_index"`
}

func toMeasurementResponse(r weather.WeatherRecord) measurementResponse {
	const layout = "2006-01-02 15:04:05"
	return measurementResponse{
		City:               r.City,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		Timestamp:          r.Timestamp.Format(layout),
		Temperature:        r.Temperature,
		FeelsLike:          r.FeelsLike,
		Humidity:           r.Humidity,
		Pressure:           r.Pressure,
		WindSpeed:          r.WindSpeed,
		WindDirection:      r.WindDirection,
		CloudsPercent:      r.CloudsPercent,
		WeatherMain:        r.WeatherMain,
		WeatherDescription: r.WeatherDescription,
		Sunrise:            r.Sunrise.Format(layout),
		Sunset:             r.Sunset.Format(layout),
		DayLength:          r.DayLength,
		TempCategory:       string(r.TempCategory),
		HeatIndex:          r.HeatIndex,
	}
}
