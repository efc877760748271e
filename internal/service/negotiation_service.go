package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/rs/zerolog/log"
)

type NegotiationService struct {
	catalog      Catalog
	negotiations NegotiationStore
	events       EventPublisher
}

func NewNegotiationService(catalog Catalog, negotiations NegotiationStore, events EventPublisher) *NegotiationService {
	return &NegotiationService{
		catalog:      catalog,
		negotiations: negotiations,
		events:       events,
	}
}

// StartNegotiation opens a bargaining thread between the customer and the
// product's farmer. Starting is idempotent: while a thread is still open,
// repeated starts return it instead of creating a duplicate.
func (s *NegotiationService) StartNegotiation(ctx context.Context, customer models.Principal, productID string) (*models.Negotiation, error) {
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}

	existing, err := s.negotiations.FindOpen(ctx, productID, customer.ID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if existing != nil {
		return existing, nil
	}

	n := &models.Negotiation{
		ID:         uuid.NewString(),
		ProductID:  productID,
		FarmerID:   product.FarmerID,
		CustomerID: customer.ID,
		Messages:   []models.NegotiationMessage{},
		Status:     models.NegotiationStatusOpen,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.negotiations.Create(ctx, n); err != nil {
		// Two racing starts can both miss FindOpen; the unique index on open
		// threads rejects the loser's insert. Return the winner's thread.
		winner, findErr := s.negotiations.FindOpen(ctx, productID, customer.ID)
		if findErr == nil && winner != nil {
			return winner, nil
		}
		log.Error().Err(err).Str("product_id", productID).Msg("failed to create negotiation")
		return nil, storageFailure(err)
	}

	s.publish(models.NegotiationEvent{
		NegotiationID: n.ID,
		ProductID:     productID,
		Kind:          models.NegotiationEventStarted,
		ActorID:       customer.ID,
		Timestamp:     n.CreatedAt,
	})

	log.Info().Str("negotiation_id", n.ID).Str("product_id", productID).Msg("negotiation started")
	return n, nil
}

// PostMessage appends one message to the thread. Only the two participants
// may post. Text and price are both optional; a price alone is a counteroffer.
func (s *NegotiationService) PostMessage(ctx context.Context, sender models.Principal, negotiationID string, req models.PostMessageRequest) (*models.Negotiation, error) {
	n, err := s.negotiations.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if n == nil {
		return nil, fmt.Errorf("negotiation %s: %w", negotiationID, ErrNotFound)
	}

	if sender.ID != n.CustomerID && sender.ID != n.FarmerID {
		return nil, fmt.Errorf("negotiation %s: %w", negotiationID, ErrForbidden)
	}

	msg := models.NegotiationMessage{
		SenderID:  sender.ID,
		Text:      req.Text,
		Price:     req.Price,
		Timestamp: time.Now().UTC(),
	}
	if err := s.negotiations.AppendMessage(ctx, negotiationID, msg); err != nil {
		log.Error().Err(err).Str("negotiation_id", negotiationID).Msg("failed to append message")
		return nil, storageFailure(err)
	}
	n.Messages = append(n.Messages, msg)

	s.publish(models.NegotiationEvent{
		NegotiationID: n.ID,
		ProductID:     n.ProductID,
		Kind:          models.NegotiationEventMessage,
		ActorID:       sender.ID,
		Timestamp:     msg.Timestamp,
	})

	return n, nil
}

// AcceptNegotiation settles the thread at a final price. Only the farmer may
// accept. The price is the explicit argument when given, otherwise the price
// on the latest message, otherwise unset. Accepting again re-runs the same
// resolution; an already rejected thread stays rejected.
func (s *NegotiationService) AcceptNegotiation(ctx context.Context, caller models.Principal, negotiationID string, finalPrice *float64) (*models.Negotiation, error) {
	return s.close(ctx, caller, negotiationID, models.NegotiationStatusAccepted, finalPrice)
}

// RejectNegotiation terminally declines the thread. Farmer-only, no price.
func (s *NegotiationService) RejectNegotiation(ctx context.Context, caller models.Principal, negotiationID string) (*models.Negotiation, error) {
	return s.close(ctx, caller, negotiationID, models.NegotiationStatusRejected, nil)
}

func (s *NegotiationService) close(ctx context.Context, caller models.Principal, negotiationID, status string, finalPrice *float64) (*models.Negotiation, error) {
	n, err := s.negotiations.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if n == nil {
		return nil, fmt.Errorf("negotiation %s: %w", negotiationID, ErrNotFound)
	}

	if caller.ID != n.FarmerID {
		return nil, fmt.Errorf("only the farmer can settle negotiation %s: %w", negotiationID, ErrForbidden)
	}

	// Terminal states never flip to the other terminal state.
	if n.Status != models.NegotiationStatusOpen && n.Status != status {
		return nil, fmt.Errorf("negotiation %s is already %s: %w", negotiationID, n.Status, ErrInvalidStatus)
	}

	resolved := finalPrice
	if status == models.NegotiationStatusAccepted && resolved == nil && len(n.Messages) > 0 {
		resolved = n.Messages[len(n.Messages)-1].Price
	}

	if err := s.negotiations.Close(ctx, negotiationID, status, resolved); err != nil {
		log.Error().Err(err).Str("negotiation_id", negotiationID).Msg("failed to close negotiation")
		return nil, storageFailure(err)
	}
	n.Status = status
	n.FinalPrice = resolved

	kind := models.NegotiationEventAccepted
	if status == models.NegotiationStatusRejected {
		kind = models.NegotiationEventRejected
	}
	s.publish(models.NegotiationEvent{
		NegotiationID: n.ID,
		ProductID:     n.ProductID,
		Kind:          kind,
		ActorID:       caller.ID,
		FinalPrice:    resolved,
		Timestamp:     time.Now().UTC(),
	})

	log.Info().Str("negotiation_id", n.ID).Str("status", status).Msg("negotiation settled")
	return n, nil
}

// ListNegotiationsByProduct returns the product's open threads visible to the
// caller: the farmer sees every thread on their product, a customer only
// their own.
func (s *NegotiationService) ListNegotiationsByProduct(ctx context.Context, caller models.Principal, productID string) ([]models.Negotiation, error) {
	negotiations, err := s.negotiations.ListOpenByProduct(ctx, productID)
	if err != nil {
		return nil, storageFailure(err)
	}

	visible := []models.Negotiation{}
	for _, n := range negotiations {
		if n.CustomerID == caller.ID || n.FarmerID == caller.ID {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

func (s *NegotiationService) publish(event models.NegotiationEvent) {
	if err := s.events.PublishNegotiation(event); err != nil {
		log.Warn().Err(err).Str("negotiation_id", event.NegotiationID).Str("kind", event.Kind).Msg("failed to publish negotiation event")
	}
}
