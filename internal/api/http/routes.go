package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weatherapp/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the weather report handlers into the Fiber app.
// Reports are served as the same plain text the CLI prints.
func RegisterRoutes(app *fiber.App, service *weather.Service, defaultCity string) {
	app.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c, defaultCity)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return report(c, service, weather.Request{City: q.City, Bypass: q.refresh})
	})

	app.Get("/weather/:provider", func(c *fiber.Ctx) error {
		q, err := parseWeatherQuery(c, defaultCity)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		p := providerParam{Provider: strings.ToLower(c.Params("provider"))}
		if err := validate.Struct(p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return report(c, service, weather.Request{
			Providers: []weather.ProviderName{weather.ProviderName(p.Provider)},
			City:      q.City,
			Bypass:    q.refresh,
		})
	})
}

func report(c *fiber.Ctx, service *weather.Service, req weather.Request) error {
	res, err := service.Run(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrUnknownProvider):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build weather report")
	}

	c.Set("X-Run-ID", res.RunID)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(weather.FormatReport(req.City, res))
}

// weatherQuery holds the query parameters shared by the report endpoints.
type weatherQuery struct {
	City    string `validate:"required,max=100"`
	Refresh string `validate:"omitempty,oneof=0 1 true false"`

	refresh bool
}

func parseWeatherQuery(c *fiber.Ctx, defaultCity string) (weatherQuery, error) {
	q := weatherQuery{
		City:    strings.TrimSpace(c.Query("city", defaultCity)),
		Refresh: strings.ToLower(c.Query("refresh")),
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	if q.Refresh != "" {
		q.refresh, _ = strconv.ParseBool(q.Refresh)
	}
	return q, nil
}

type providerParam struct {
	Provider string `validate:"required,alphanum,max=32"`
}
