package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/analytics"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/service"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/transport"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/twin"
)

const maxForecastPoints = 288

type LiveOptions struct {
	Interval    time.Duration
	FaultSecret string
	Maintenance *service.MaintenanceService
	Now         func() time.Time
}

// RegisterLive exposes the running session's rolling history to dashboards.
func RegisterLive(app *fiber.App, session *twin.Session, opts LiveOptions) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Maintenance == nil {
		opts.Maintenance = service.NewMaintenanceService(nil)
	}

	g := app.Group("/")
	g.Get("history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"home_id":  session.HomeID(),
			"max_len":  session.MaxLen(),
			"readings": session.History(),
		})
	})
	g.Get("latest", func(c *fiber.Ctx) error {
		r, ok := session.Latest()
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no readings yet"})
		}
		return c.JSON(r)
	})
	g.Get("stats", func(c *fiber.Ctx) error {
		return c.JSON(analytics.Summarize(session.History(), opts.Interval))
	})
	g.Get("forecast", func(c *fiber.Ctx) error {
		points := c.QueryInt("points", 24)
		if points < 1 || points > maxForecastPoints {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "points must be between 1 and 288"})
		}
		return c.JSON(fiber.Map{
			"interval_seconds": opts.Interval.Seconds(),
			"points":           analytics.Forecast(session.History(), points),
		})
	})
	g.Get("insights", func(c *fiber.Ctx) error {
		history := session.History()
		var latest *domain.Reading
		if len(history) > 0 {
			latest = &history[len(history)-1]
		}
		return c.JSON(analytics.Annotate(analytics.Summarize(history, opts.Interval), latest))
	})
	g.Get("maintenance", func(c *fiber.Ctx) error {
		p, err := opts.Maintenance.Predict(c.UserContext(), session.HomeID(), session.History(), opts.Now())
		if err != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(p)
	})
	g.Get("spatial", func(c *fiber.Ctx) error {
		r, _ := session.Latest()
		return c.JSON(domain.SpatialStateFor(r.TotalLoad))
	})
	g.Get("spatial.svg", func(c *fiber.Ctx) error {
		r, _ := session.Latest()
		svg, err := renderSpatial(domain.SpatialStateFor(r.TotalLoad))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		c.Set(fiber.HeaderContentType, "image/svg+xml")
		return c.Send(svg)
	})
	g.Get("export.csv", func(c *fiber.Ctx) error {
		c.Attachment("home_history.csv")
		c.Set(fiber.HeaderContentType, "text/csv")
		return transport.WriteCSV(c, session.History())
	})
	g.Post("fault", RequireToken(opts.FaultSecret), func(c *fiber.Ctx) error {
		session.TriggerFault()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "fault scheduled for next reading"})
	})
	g.Get("metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
