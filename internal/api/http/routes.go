package httpapi

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-charts/internal/chart"
	"github.com/i474232898/weather-charts/internal/render"
	"github.com/i474232898/weather-charts/internal/store"
	"github.com/i474232898/weather-charts/internal/weather"
)

var validate = validator.New()

// Option configures the chart endpoint.
type Option func(*routes)

// WithLayout sets the layout used when a request does not name one.
func WithLayout(l chart.Layout) Option {
	return func(r *routes) { r.layout = l }
}

// WithZone sets the zone used for day boundaries and labels.
func WithZone(z *time.Location) Option {
	return func(r *routes) { r.zone = z }
}

// WithColors overrides the series colours.
func WithColors(c chart.Colors) Option {
	return func(r *routes) { r.colors = c }
}

type routes struct {
	service *weather.Service
	layout  chart.Layout
	zone    *time.Location
	colors  chart.Colors
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts ...Option) {
	r := &routes{
		service: service,
		layout:  chart.DetailedLayout,
		zone:    chart.Eastern,
		colors:  chart.DefaultColors(),
	}
	for _, opt := range opts {
		opt(r)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-charts",
		})
	})

	v1 := app.Group("/api/v1")
	v1.Get("/weather/current", r.current)
	v1.Get("/weather/history", r.history)
	v1.Get("/weather/forecast", r.forecast)
	v1.Get("/weather/chart", r.chart)
}

func (r *routes) current(c *fiber.Ctx) error {
	locReq, err := parseLocationQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snapshot, err := r.service.GetLatest(locReq.toLocation())
	if err != nil {
		return toHTTPError(err, "no weather data for requested location")
	}
	return c.JSON(snapshot)
}

func (r *routes) history(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	loc := req.Location.toLocation()
	snapshots, err := r.service.GetRange(loc, req.From, req.To)
	if err != nil {
		return toHTTPError(err, "no weather history for requested range")
	}
	return c.JSON(fiber.Map{
		"location":  loc,
		"from":      req.From,
		"to":        req.To,
		"snapshots": snapshots,
	})
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Location locationQuery
	Lat      string `validate:"omitempty,latitude,required_with=Lon"`
	Lon      string `validate:"omitempty,longitude,required_with=Lat"`
	Days     int    `validate:"required,min=1,max=7"`
}

func (r *routes) forecast(c *fiber.Ctx) error {
	var req forecastQuery
	loc, err := parseLocationQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	req.Location = loc
	req.Lat, req.Lon = c.Query("lat"), c.Query("lon")
	if req.Days, err = strconv.Atoi(c.Query("days")); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "days must be an integer between 1 and 7")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	target := loc.toLocation()
	if req.Lat != "" {
		lat, _ := strconv.ParseFloat(req.Lat, 64)
		lon, _ := strconv.ParseFloat(req.Lon, 64)
		target = target.WithCoordinates(lat, lon)
	}
	f, err := r.service.GetForecast(c.UserContext(), target, req.Days)
	if err != nil {
		return toHTTPError(err, "no forecast for requested location")
	}
	return c.JSON(f)
}

// chartQuery holds query parameters for the chart endpoint. A location is
// either a city (country optional) or a lat/lon pair.
type chartQuery struct {
	City    string  `query:"city" validate:"required_without=Lat"`
	Country string  `query:"country"`
	Lat     string  `query:"lat" validate:"omitempty,latitude,required_with=Lon"`
	Lon     string  `query:"lon" validate:"omitempty,longitude,required_with=Lat"`
	Days    int     `query:"days" validate:"omitempty,min=1,max=7"`
	Hours   int     `query:"hours" validate:"omitempty,min=1,max=168"`
	Width   float64 `query:"width" validate:"omitempty,gt=0,lte=10000"`
	Height  float64 `query:"height" validate:"omitempty,gt=0,lte=10000"`
	Layout  string  `query:"layout" validate:"omitempty,oneof=detailed compact"`
	Source  string  `query:"source" validate:"omitempty,oneof=forecast history"`
	Format  string  `query:"format" validate:"omitempty,oneof=svg json"`
}

// DefaultChartHeight is used when a request gives no height.
const DefaultChartHeight = 400

func (q chartQuery) location() weather.Location {
	loc := weather.Location{City: q.City, Country: q.Country}
	if q.Lat == "" {
		return loc
	}
	// Validated as latitude/longitude above.
	lat, _ := strconv.ParseFloat(q.Lat, 64)
	lon, _ := strconv.ParseFloat(q.Lon, 64)
	return loc.WithCoordinates(lat, lon)
}

func (r *routes) chart(c *fiber.Ctx) error {
	var q chartQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if q.Days == 0 {
		q.Days = 1
	}
	if q.Height == 0 {
		q.Height = DefaultChartHeight
	}

	layout := r.layout
	if q.Layout != "" {
		l, err := chart.LayoutByName(q.Layout)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		layout = l
	}

	loc := q.location()
	series, err := r.service.ChartSeries(c.UserContext(), loc, weather.Source(q.Source), q.Days, time.Duration(q.Hours)*time.Hour)
	if err != nil {
		return toHTTPError(err, "no chart data for requested location")
	}

	scene, err := chart.NewComposer(layout, r.colors, r.zone).Compose(series, chart.Viewport{Width: q.Width, Height: q.Height})
	if scene == nil || scene.Empty {
		return fiber.NewError(fiber.StatusNotFound, "no chart data for requested location")
	}
	if err != nil {
		// Drawable series are still served.
		log.Warn().Str("component", "http").Err(err).Str("location", loc.Key()).Msg("chart composed with skipped series")
	}

	if q.Format == "json" {
		return c.JSON(scene)
	}
	var buf bytes.Buffer
	if err := render.SVG(&buf, scene); err != nil {
		return err
	}
	c.Type("svg")
	return c.Send(buf.Bytes())
}

// toHTTPError maps domain errors to HTTP errors. notFound is the message for
// the missing-data case.
func toHTTPError(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, weather.ErrNoForecast), errors.Is(err, chart.ErrNoData):
		return fiber.NewError(fiber.StatusNotFound, notFound)
	case errors.Is(err, weather.ErrInvalidDays):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrNoProviders):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Str("component", "http").Err(err).Msg("request failed")
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	q := locationQuery{City: c.Query("city"), Country: c.Query("country")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}
	if h.From, err = parseTime(fromStr); err != nil {
		return err
	}
	if h.To, err = parseTime(toStr); err != nil {
		return err
	}
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
