package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/cloud"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/config"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/database"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/logging"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/repository"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/service"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/transport"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Setup(config.LogLevel(), config.LogFile())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	repos := repository.New(db)
	if err := repos.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema setup failed")
	}

	var opts []service.Option
	if config.UseCloudServices() {
		dynamo, err := cloud.NewDynamoDBClient(ctx, config.AWSRegion(), config.DynamoDBTable())
		if err != nil {
			log.Fatal().Err(err).Msg("dynamodb client")
		}
		opts = append(opts, service.WithMirror(dynamo))
		if arn := config.SNSTopicArn(); arn != "" {
			sns, err := cloud.NewSNSClient(ctx, config.AWSRegion(), arn)
			if err != nil {
				log.Fatal().Err(err).Msg("sns client")
			}
			opts = append(opts, service.WithAlerter(sns))
		}
	}
	svcs := service.New(repos, opts...)

	switch config.Transport() {
	case "kafka":
		log.Info().Str("topic", config.KafkaTopic()).Msg("ingestor running; Ctrl+C to stop")
		err := transport.ConsumeKafka(ctx, config.KafkaBrokers(), config.KafkaTopic(), config.KafkaGroupID(),
			func(topic string, payload []byte) error {
				return svcs.Readings.Ingest(ctx, topic, payload)
			})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("kafka consumer failed")
		}
	default:
		client, err := transport.Connect(config.MQTTBroker(), "ingestor-"+config.HomeID())
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect")
		}
		defer client.Disconnect(250)

		handler := func(_ mqtt.Client, msg mqtt.Message) {
			if err := svcs.Readings.Ingest(ctx, msg.Topic(), msg.Payload()); err != nil {
				log.Error().Err(err).Msg("ingest failed")
			}
		}
		if token := client.Subscribe(config.ReadingsTopic(), 0, handler); token.Wait() && token.Error() != nil {
			log.Fatal().Err(token.Error()).Msg("subscribe failed")
		}
		log.Info().Str("topic", config.ReadingsTopic()).Msg("ingestor running; Ctrl+C to stop")
		<-ctx.Done()
	}
	log.Info().Msg("ingestor stopped")
}
