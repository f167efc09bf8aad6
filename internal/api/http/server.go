package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weatherapp/internal/metrics"
	"github.com/i474232898/weatherapp/internal/weather"
)

// Options configures the serve-mode app.
type Options struct {
	DefaultCity string
	Gatherer    prometheus.Gatherer
	Metrics     *metrics.Metrics
	Logger      logrus.FieldLogger
}

// NewApp builds the Fiber app serving health, metrics and weather reports.
func NewApp(service *weather.Service, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weatherapp",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestLogger(opts.Logger, opts.Metrics))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "weatherapp",
			"providers": service.Registry().Names(),
		})
	})

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	RegisterRoutes(app, service, opts.DefaultCity)
	return app
}

// requestLogger logs and counts every request once its status is known.
func requestLogger(logger logrus.FieldLogger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		code := c.Response().StatusCode()
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		} else if err != nil {
			code = fiber.StatusInternalServerError
		}

		m.ObserveRequest(c.Route().Path, strconv.Itoa(code))
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"method":   c.Method(),
				"path":     c.Path(),
				"status":   code,
				"duration": time.Since(started).String(),
			}).Info("request handled")
		}
		return err
	}
}
