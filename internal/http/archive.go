package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/analytics"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/service"
)

const maxArchiveLimit = 1000

type ArchiveOptions struct {
	HomeID   string
	Interval time.Duration
}

// Register exposes the readings archived by the ingestor.
func Register(app *fiber.App, svcs *service.Services, opts ArchiveOptions) {
	limitParam := func(c *fiber.Ctx) (int, error) {
		limit := c.QueryInt("limit", 50)
		if limit < 1 || limit > maxArchiveLimit {
			return 0, errors.New("limit must be between 1 and 1000")
		}
		return limit, nil
	}
	homeParam := func(c *fiber.Ctx) string { return c.Query("home_id", opts.HomeID) }

	g := app.Group("/")
	g.Get("readings/recent", func(c *fiber.Ctx) error {
		limit, err := limitParam(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		items, err := svcs.Readings.Recent(c.UserContext(), homeParam(c), limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"readings": items})
	})
	g.Get("readings/stats", func(c *fiber.Ctx) error {
		limit, err := limitParam(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		home := homeParam(c)
		items, err := svcs.Readings.Recent(c.UserContext(), home, limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		faults, err := svcs.Repos.CountFaults(c.UserContext(), home)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"summary":           analytics.Summarize(items, opts.Interval),
			"fault_count_total": faults,
		})
	})
	g.Post("reports", func(c *fiber.Ctx) error {
		if svcs.Reports == nil {
			return c.Status(503).JSON(fiber.Map{"error": "cloud services not enabled"})
		}
		limit, err := limitParam(c)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		rep, err := svcs.Reports.Generate(c.UserContext(), homeParam(c), limit, time.Now().UTC())
		if errors.Is(err, service.ErrNoReadings) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(rep)
	})
	g.Get("reports", func(c *fiber.Ctx) error {
		if svcs.Reports == nil {
			return c.Status(503).JSON(fiber.Map{"error": "cloud services not enabled"})
		}
		keys, err := svcs.Reports.List(c.UserContext(), homeParam(c))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"reports": keys})
	})
	g.Get("metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
