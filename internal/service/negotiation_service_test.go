package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/harvestlink/harvest-market/internal/service"
)

var (
	farmer   = models.Principal{ID: "farmer-1", Role: models.RoleFarmer}
	customer = models.Principal{ID: "cust-1", Role: models.RoleCustomer}
	stranger = models.Principal{ID: "cust-2", Role: models.RoleCustomer}
)

func openThread() *models.Negotiation {
	return &models.Negotiation{
		ID:         "n1",
		ProductID:  "p1",
		FarmerID:   "farmer-1",
		CustomerID: "cust-1",
		Status:     models.NegotiationStatusOpen,
		Messages:   []models.NegotiationMessage{},
		CreatedAt:  time.Now().UTC(),
	}
}

func TestNegotiationService_StartNegotiation(t *testing.T) {
	catalog := catalogWith(map[string]*models.Product{
		"p1": {ID: "p1", Name: "Tomatoes", Price: 10, FarmerID: "farmer-1"},
	})

	t.Run("unknown_product", func(t *testing.T) {
		store := &mockNegotiationStore{}
		svc := service.NewNegotiationService(catalog, store, &mockPublisher{})

		_, err := svc.StartNegotiation(context.Background(), customer, "missing")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("returns_existing_open_thread", func(t *testing.T) {
		existing := openThread()
		created := false
		store := &mockNegotiationStore{
			findOpenFunc: func(ctx context.Context, productID, customerID string) (*models.Negotiation, error) {
				return existing, nil
			},
			createFunc: func(ctx context.Context, n *models.Negotiation) error {
				created = true
				return nil
			},
		}
		events := &mockPublisher{}
		svc := service.NewNegotiationService(catalog, store, events)

		n, err := svc.StartNegotiation(context.Background(), customer, "p1")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, n.ID)
		assert.False(t, created)
		assert.Empty(t, events.negotiations)
	})

	t.Run("creates_new_thread", func(t *testing.T) {
		var stored *models.Negotiation
		store := &mockNegotiationStore{
			findOpenFunc: func(ctx context.Context, productID, customerID string) (*models.Negotiation, error) {
				return nil, nil
			},
			createFunc: func(ctx context.Context, n *models.Negotiation) error {
				stored = n
				return nil
			},
		}
		events := &mockPublisher{}
		svc := service.NewNegotiationService(catalog, store, events)

		n, err := svc.StartNegotiation(context.Background(), customer, "p1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, models.NegotiationStatusOpen, n.Status)
		assert.Equal(t, "farmer-1", n.FarmerID)
		assert.Equal(t, "cust-1", n.CustomerID)
		assert.Empty(t, n.Messages)

		require.Len(t, events.negotiations, 1)
		assert.Equal(t, models.NegotiationEventStarted, events.negotiations[0].Kind)
	})

	t.Run("racing_start_returns_winner", func(t *testing.T) {
		// Both racing starts miss FindOpen; the open-thread unique index
		// rejects the loser's insert, which must then surface the winner's
		// thread instead of a storage error.
		winner := openThread()
		calls := 0
		store := &mockNegotiationStore{
			findOpenFunc: func(ctx context.Context, productID, customerID string) (*models.Negotiation, error) {
				calls++
				if calls == 1 {
					return nil, nil
				}
				return winner, nil
			},
			createFunc: func(ctx context.Context, n *models.Negotiation) error {
				return errors.New(`duplicate key value violates unique constraint "idx_negotiations_open"`)
			},
		}
		events := &mockPublisher{}
		svc := service.NewNegotiationService(catalog, store, events)

		n, err := svc.StartNegotiation(context.Background(), customer, "p1")
		require.NoError(t, err)
		assert.Equal(t, winner.ID, n.ID)
		assert.Equal(t, 2, calls)
		assert.Empty(t, events.negotiations)
	})
}

func TestNegotiationService_PostMessage(t *testing.T) {
	t.Run("missing_thread", func(t *testing.T) {
		store := &mockNegotiationStore{
			getByIDFunc: func(ctx context.Context, id string) (*models.Negotiation, error) { return nil, nil },
		}
		svc := service.NewNegotiationService(nil, store, &mockPublisher{})

		_, err := svc.PostMessage(context.Background(), customer, "nope", models.PostMessageRequest{Text: "hi"})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("third_party_forbidden", func(t *testing.T) {
		appended := false
		store := &mockNegotiationStore{
			getByIDFunc: func(ctx context.Context, id string) (*models.Negotiation, error) {
				return openThread(), nil
			},
			appendMessageFunc: func(ctx context.Context, negotiationID string, msg models.NegotiationMessage) error {
				appended = true
				return nil
			},
		}
		svc := service.NewNegotiationService(nil, store, &mockPublisher{})

		_, err := svc.PostMessage(context.Background(), stranger, "n1", models.PostMessageRequest{Text: "let me in"})
		assert.ErrorIs(t, err, service.ErrForbidden)
		assert.False(t, appended)
	})

	t.Run("counteroffer", func(t *testing.T) {
		var appendedMsg models.NegotiationMessage
		store := &mockNegotiationStore{
			getByIDFunc: func(ctx context.Context, id string) (*models.Negotiation, error) {
				return openThread(), nil
			},
			appendMessageFunc: func(ctx context.Context, negotiationID string, msg models.NegotiationMessage) error {
				appendedMsg = msg
				return nil
			},
		}
		events := &mockPublisher{}
		svc := service.NewNegotiationService(nil, store, events)

		n, err := svc.PostMessage(context.Background(), customer, "n1", models.PostMessageRequest{Price: floatPtr(8)})
		require.NoError(t, err)
		require.Len(t, n.Messages, 1)
		assert.Equal(t, "cust-1", appendedMsg.SenderID)
		require.NotNil(t, appendedMsg.Price)
		assert.Equal(t, 8.0, *appendedMsg.Price)

		require.Len(t, events.negotiations, 1)
		assert.Equal(t, models.NegotiationEventMessage, events.negotiations[0].Kind)
	})
}

func TestNegotiationService_AcceptNegotiation(t *testing.T) {
	storeFor := func(n *models.Negotiation) (*mockNegotiationStore, *struct {
		status string
		price  *float64
	}) {
		closed := &struct {
			status string
			price  *float64
		}{}
		return &mockNegotiationStore{
			getByIDFunc: func(ctx context.Context, id string) (*models.Negotiation, error) { return n, nil },
			closeFunc: func(ctx context.Context, id, status string, finalPrice *float64) error {
				closed.status = status
				closed.price = finalPrice
				return nil
			},
		}, closed
	}

	t.Run("customer_cannot_accept", func(t *testing.T) {
		store, _ := storeFor(openThread())
		svc := service.NewNegotiationService(nil, store, &mockPublisher{})

		_, err := svc.AcceptNegotiation(context.Background(), customer, "n1", nil)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("explicit_price_wins", func(t *testing.T) {
		thread := openThread()
		thread.Messages = []models.NegotiationMessage{{SenderID: "cust-1", Price: floatPtr(7)}}
		store, closed := storeFor(thread)
		events := &mockPublisher{}
		svc := service.NewNegotiationService(nil, store, events)

		n, err := svc.AcceptNegotiation(context.Background(), farmer, "n1", floatPtr(9))
		require.NoError(t, err)
		assert.Equal(t, models.NegotiationStatusAccepted, n.Status)
		require.NotNil(t, n.FinalPrice)
		assert.Equal(t, 9.0, *n.FinalPrice)
		assert.Equal(t, 9.0, *closed.price)

		require.Len(t, events.negotiations, 1)
		assert.Equal(t, models.NegotiationEventAccepted, events.negotiations[0].Kind)
	})

	t.Run("falls_back_to_last_message_price", func(t *testing.T) {
		thread := openThread()
		thread.Messages = []models.NegotiationMessage{
			{SenderID: "cust-1", Price: floatPtr(7)},
			{SenderID: "farmer-1", Text: "best I can do", Price: floatPtr(8)},
		}
		store, closed := storeFor(thread)
		svc := service.NewNegotiationService(nil, store, &mockPublisher{})

		n, err := svc.AcceptNegotiation(context.Background(), farmer, "n1", nil)
		require.NoError(t, err)
		require.NotNil(t, n.FinalPrice)
		assert.Equal(t, 8.0, *n.FinalPrice)
		assert.Equal(t, 8.0, *closed.price)
	})

	t.Run("no_messages_no_price", func(t *testing.T) {
		store, closed := storeFor(openThread())
		svc := service.NewNegotiationService(nil, store, &mockPublisher{})

		n, err := svc.AcceptNegotiation(context.Background(), farmer, "n1", nil)
		require.NoError(t, err)
		assert.Nil(t, n.FinalPrice)
		assert.Nil(t, closed.price)
	})

	t.Run("rejected_thread_stays_rejected", func(t *testing.T) {
		thread := openThread()
		thread.Status = models.NegotiationStatusRejected
		store, _ := storeFor(thread)
		svc := service.NewNegotiationService(nil, store, &mockPublisher{})

		_, err := svc.AcceptNegotiation(context.Background(), farmer, "n1", nil)
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("accepting_again_is_allowed", func(t *testing.T) {
		thread := openThread()
		thread.Status = models.NegotiationStatusAccepted
		thread.FinalPrice = floatPtr(9)
		store, _ := storeFor(thread)
		svc := service.NewNegotiationService(nil, store, &mockPublisher{})

		n, err := svc.AcceptNegotiation(context.Background(), farmer, "n1", floatPtr(9))
		require.NoError(t, err)
		assert.Equal(t, models.NegotiationStatusAccepted, n.Status)
	})
}

func TestNegotiationService_RejectNegotiation(t *testing.T) {
	t.Run("farmer_rejects", func(t *testing.T) {
		store := &mockNegotiationStore{
			getByIDFunc: func(ctx context.Context, id string) (*models.Negotiation, error) { return openThread(), nil },
			closeFunc: func(ctx context.Context, id, status string, finalPrice *float64) error {
				assert.Equal(t, models.NegotiationStatusRejected, status)
				assert.Nil(t, finalPrice)
				return nil
			},
		}
		events := &mockPublisher{}
		svc := service.NewNegotiationService(nil, store, events)

		n, err := svc.RejectNegotiation(context.Background(), farmer, "n1")
		require.NoError(t, err)
		assert.Equal(t, models.NegotiationStatusRejected, n.Status)

		require.Len(t, events.negotiations, 1)
		assert.Equal(t, models.NegotiationEventRejected, events.negotiations[0].Kind)
	})

	t.Run("accepted_thread_cannot_flip", func(t *testing.T) {
		thread := openThread()
		thread.Status = models.NegotiationStatusAccepted
		store := &mockNegotiationStore{
			getByIDFunc: func(ctx context.Context, id string) (*models.Negotiation, error) { return thread, nil },
		}
		svc := service.NewNegotiationService(nil, store, &mockPublisher{})

		_, err := svc.RejectNegotiation(context.Background(), farmer, "n1")
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})
}

func TestNegotiationService_ListNegotiationsByProduct(t *testing.T) {
	threads := []models.Negotiation{
		{ID: "n1", ProductID: "p1", FarmerID: "farmer-1", CustomerID: "cust-1"},
		{ID: "n2", ProductID: "p1", FarmerID: "farmer-1", CustomerID: "cust-2"},
	}
	store := &mockNegotiationStore{
		listOpenByProductFunc: func(ctx context.Context, productID string) ([]models.Negotiation, error) {
			return threads, nil
		},
	}
	svc := service.NewNegotiationService(nil, store, &mockPublisher{})

	t.Run("farmer_sees_all", func(t *testing.T) {
		visible, err := svc.ListNegotiationsByProduct(context.Background(), farmer, "p1")
		require.NoError(t, err)
		assert.Len(t, visible, 2)
	})

	t.Run("customer_sees_own", func(t *testing.T) {
		visible, err := svc.ListNegotiationsByProduct(context.Background(), customer, "p1")
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, "n1", visible[0].ID)
	})
}
