package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/cloud"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/config"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/database"
	httpHandlers "github.com/ANIKETSHETTY47/virtual-home-twin/internal/http"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/logging"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/repository"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/service"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(config.LogLevel(), config.LogFile())

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	var opts []service.Option
	if config.UseCloudServices() {
		s3, err := cloud.NewS3Client(context.Background(), config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Fatal().Err(err).Msg("s3 client")
		}
		opts = append(opts, service.WithReportStore(s3))
	}
	svcs := service.New(repository.New(db), opts...)

	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	httpHandlers.Register(app, svcs, httpHandlers.ArchiveOptions{
		HomeID:   config.HomeID(),
		Interval: config.RefreshInterval(),
	})

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
