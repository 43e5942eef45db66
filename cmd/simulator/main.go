package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/cloud"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/config"
	httpHandlers "github.com/ANIKETSHETTY47/virtual-home-twin/internal/http"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/logging"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/service"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/stream"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/transport"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/twin"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(config.LogLevel(), config.LogFile())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := twin.NewSession(
		twin.NewSynthesizer(twin.NewSource(config.Seed())),
		config.HistoryMaxLen(),
		config.HomeID(),
	)

	var sinks []twin.Sink
	if path := config.CSVPath(); path != "" {
		sinks = append(sinks, transport.NewCSVSink(path))
	}

	switch config.Transport() {
	case "mqtt":
		client, err := transport.Connect(config.MQTTBroker(), "twin-"+config.HomeID())
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect")
		}
		defer client.Disconnect(250)
		if err := transport.SubscribeFaults(client, config.ControlTopic(), session); err != nil {
			log.Fatal().Err(err).Msg("subscribe failed")
		}
		sinks = append(sinks, transport.NewMQTTPublisher(client, config.ReadingsTopic()))
	case "kafka":
		pub := transport.NewKafkaPublisher(config.KafkaBrokers(), config.KafkaTopic())
		defer pub.Close()
		sinks = append(sinks, pub)
	case "none":
	default:
		log.Fatal().Str("transport", config.Transport()).Msg("unknown transport")
	}

	hub := stream.New(session)
	sinks = append(sinks, hub)
	go hub.Run(ctx)
	streamSrv := &http.Server{Addr: config.StreamAddr(), Handler: hub}
	go func() {
		log.Info().Str("addr", streamSrv.Addr).Msg("stream listening")
		if err := streamSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("stream exit")
		}
	}()

	var alerter service.Alerter
	if config.UseCloudServices() && config.SNSTopicArn() != "" {
		sns, err := cloud.NewSNSClient(ctx, config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Fatal().Err(err).Msg("sns client")
		}
		alerter = sns
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	httpHandlers.RegisterLive(app, session, httpHandlers.LiveOptions{
		Interval:    config.RefreshInterval(),
		FaultSecret: config.FaultTokenSecret(),
		Maintenance: service.NewMaintenanceService(alerter),
	})

	go func() {
		addr := config.DashboardAddr()
		log.Info().Str("addr", addr).Msg("dashboard listening")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("dashboard exit")
			stop()
		}
	}()

	loop := twin.NewLoop(session, config.RefreshInterval(), sinks...)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("refresh loop failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("dashboard shutdown")
	}
	if err := streamSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("stream shutdown")
	}
	log.Info().Int("readings", session.Len()).Msg("simulation done")
}
