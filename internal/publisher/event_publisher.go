package publisher

import (
	"encoding/json"
	"fmt"

	"github.com/harvestlink/harvest-market/internal/messaging"
	"github.com/harvestlink/harvest-market/internal/models"
)

// Queues feeding the notification sink.
const (
	OrderCreatedQueue = "order.created"
	OrderStatusQueue  = "order.status"
	NegotiationQueue  = "negotiation.events"
)

type EventPublisher struct {
	mq *messaging.RabbitMQ
}

func NewEventPublisher(mq *messaging.RabbitMQ) (*EventPublisher, error) {
	for _, queue := range []string{OrderCreatedQueue, OrderStatusQueue, NegotiationQueue} {
		if err := mq.DeclareQueue(queue); err != nil {
			return nil, err
		}
	}
	return &EventPublisher{mq: mq}, nil
}

// PublishOrderCreated publishes an order.created event
func (p *EventPublisher) PublishOrderCreated(event models.OrderCreatedEvent) error {
	return p.publish(OrderCreatedQueue, event)
}

// PublishOrderStatus publishes an order.status event for a tracking append
func (p *EventPublisher) PublishOrderStatus(event models.OrderStatusEvent) error {
	return p.publish(OrderStatusQueue, event)
}

// PublishNegotiation publishes negotiation thread activity
func (p *EventPublisher) PublishNegotiation(event models.NegotiationEvent) error {
	return p.publish(NegotiationQueue, event)
}

func (p *EventPublisher) publish(queue string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.mq.Publish(queue, data)
}
