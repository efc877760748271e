package consumer

import (
	"encoding/json"

	"github.com/harvestlink/harvest-market/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// NotificationConsumer drains the event queues and surfaces each event for
// display. It never writes back to the marketplace: in particular it does NOT
// touch product stock when orders arrive.
type NotificationConsumer struct{}

func NewNotificationConsumer() *NotificationConsumer {
	return &NotificationConsumer{}
}

// ProcessOrderCreated handles order.created events
func (c *NotificationConsumer) ProcessOrderCreated(messages <-chan amqp.Delivery) {
	for msg := range messages {
		var event models.OrderCreatedEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Error().Err(err).Msg("failed to parse order.created event")
			msg.Nack(false, false)
			continue
		}

		log.Info().
			Str("order_id", event.OrderID).
			Str("customer_id", event.CustomerID).
			Str("farmer_id", event.FarmerID).
			Float64("total", event.TotalPrice).
			Int("items", len(event.Items)).
			Msg("📥 new order placed")

		msg.Ack(false)
	}
}

// ProcessOrderStatus handles order.status events
func (c *NotificationConsumer) ProcessOrderStatus(messages <-chan amqp.Delivery) {
	for msg := range messages {
		var event models.OrderStatusEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Error().Err(err).Msg("failed to parse order.status event")
			msg.Nack(false, false)
			continue
		}

		log.Info().
			Str("order_id", event.OrderID).
			Str("status", event.Status).
			Str("note", event.Note).
			Msg("📥 order tracking update")

		msg.Ack(false)
	}
}

// ProcessNegotiations handles negotiation.events
func (c *NotificationConsumer) ProcessNegotiations(messages <-chan amqp.Delivery) {
	for msg := range messages {
		var event models.NegotiationEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			log.Error().Err(err).Msg("failed to parse negotiation event")
			msg.Nack(false, false)
			continue
		}

		logEvent := log.Info().
			Str("negotiation_id", event.NegotiationID).
			Str("product_id", event.ProductID).
			Str("kind", event.Kind).
			Str("actor_id", event.ActorID)
		if event.FinalPrice != nil {
			logEvent = logEvent.Float64("final_price", *event.FinalPrice)
		}
		logEvent.Msg("📥 negotiation activity")

		msg.Ack(false)
	}
}
