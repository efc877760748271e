package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/harvestlink/harvest-market/internal/config"
	"github.com/harvestlink/harvest-market/internal/consumer"
	"github.com/harvestlink/harvest-market/internal/messaging"
	"github.com/harvestlink/harvest-market/internal/publisher"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPass)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}
	defer rabbitMQ.Close()

	queues := []string{publisher.OrderCreatedQueue, publisher.OrderStatusQueue, publisher.NegotiationQueue}
	for _, queue := range queues {
		if err := rabbitMQ.DeclareQueue(queue); err != nil {
			log.Fatal().Err(err).Str("queue", queue).Msg("Failed to declare queue")
		}
	}

	orderCreated, err := rabbitMQ.Consume(publisher.OrderCreatedQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to consume order.created")
	}
	orderStatus, err := rabbitMQ.Consume(publisher.OrderStatusQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to consume order.status")
	}
	negotiations, err := rabbitMQ.Consume(publisher.NegotiationQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to consume negotiation.events")
	}

	notifier := consumer.NewNotificationConsumer()
	go notifier.ProcessOrderCreated(orderCreated)
	go notifier.ProcessOrderStatus(orderStatus)
	go notifier.ProcessNegotiations(negotiations)

	log.Info().Msg("👂 Notifier listening for marketplace events")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down...")
}
