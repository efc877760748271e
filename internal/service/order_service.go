package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-market/internal/models"
	"github.com/rs/zerolog/log"
)

type OrderService struct {
	catalog Catalog
	orders  OrderStore
	events  EventPublisher
}

func NewOrderService(catalog Catalog, orders OrderStore, events EventPublisher) *OrderService {
	return &OrderService{
		catalog: catalog,
		orders:  orders,
		events:  events,
	}
}

// CreateOrder builds an order from the caller's item list. Prices and names
// are snapshotted from the catalog at this moment; anything the client claims
// about prices is ignored. The order is attributed to a farmer only when
// every line item belongs to the same one.
func (s *OrderService) CreateOrder(ctx context.Context, customer models.Principal, req models.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items in order", ErrInvalidInput)
	}
	if req.ShippingPrice < 0 {
		return nil, fmt.Errorf("%w: shipping price cannot be negative", ErrInvalidInput)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCOD
	}
	if paymentMethod != models.PaymentMethodCOD && paymentMethod != models.PaymentMethodOnline {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, paymentMethod)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	farmers := make(map[string]bool)
	var itemsTotal float64

	for _, it := range req.Items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, fmt.Errorf("%w: quantity for product %s must be positive", ErrInvalidInput, it.ProductID)
		}

		product, err := s.catalog.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, storageFailure(err)
		}
		if product == nil {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, ErrNotFound)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  qty,
		})
		itemsTotal += product.Price * qty
		farmers[product.FarmerID] = true
	}

	// Attribute the order to a farmer only when the attribution is
	// unambiguous; mixed-farmer orders stay unattributed.
	farmerID := ""
	if len(farmers) == 1 {
		for id := range farmers {
			farmerID = id
		}
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.NewString(),
		CustomerID:      customer.ID,
		FarmerID:        farmerID,
		Items:           items,
		ItemsTotal:      itemsTotal,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      itemsTotal + req.ShippingPrice,
		PaymentMethod:   paymentMethod,
		IsPaid:          false, // online payments get confirmed elsewhere
		ShippingAddress: req.ShippingAddress,
		Status:          models.OrderStatusPending,
		Tracking: []models.TrackingEntry{
			{Status: models.OrderStatusPending, Note: "Order created", Timestamp: now},
		},
		CreatedAt: now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		log.Error().Err(err).Str("customer_id", customer.ID).Msg("failed to create order")
		return nil, storageFailure(err)
	}

	event := models.OrderCreatedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		FarmerID:   order.FarmerID,
		TotalPrice: order.TotalPrice,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, models.OrderItemEvent{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if err := s.events.PublishOrderCreated(event); err != nil {
		// Order is already persisted; the sink missing an event is tolerable.
		log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to publish order.created")
	}

	log.Info().Str("order_id", order.ID).Str("customer_id", customer.ID).Float64("total", order.TotalPrice).Msg("order created")
	return order, nil
}

// GetOrderByID returns a single order to its owning customer. Farmers and
// admins use the aggregate listing instead; this surface is customer-only.
func (s *OrderService) GetOrderByID(ctx context.Context, caller models.Principal, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if order.CustomerID != caller.ID {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrForbidden)
	}
	return order, nil
}

// ListMyOrders returns the caller's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, customer models.Principal) ([]models.Order, error) {
	orders, err := s.orders.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, storageFailure(err)
	}
	return orders, nil
}

// ListOrdersForFarmer returns the orders attributed to the calling farmer.
func (s *OrderService) ListOrdersForFarmer(ctx context.Context, farmer models.Principal) ([]models.Order, error) {
	orders, err := s.orders.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return nil, storageFailure(err)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to a new status and appends the matching
// tracking entry. Only the order's farmer or an admin may call it. Any of the
// seven statuses may follow any other; re-applying the current status still
// appends an entry, which is the expected audit behavior, not a bug.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, caller models.Principal, orderID string, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	if req.Status != "" && !models.ValidOrderStatuses[req.Status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	isFarmerOwner := order.FarmerID != "" && order.FarmerID == caller.ID
	if !caller.IsAdmin() && !isFarmerOwner {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrForbidden)
	}

	newStatus := req.Status
	if newStatus == "" {
		newStatus = order.Status
	}
	note := req.Note
	if note == "" {
		note = "Status updated"
	}

	entry := models.TrackingEntry{Status: newStatus, Note: note, Timestamp: time.Now().UTC()}
	if err := s.orders.AppendTracking(ctx, orderID, entry); err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("failed to append tracking entry")
		return nil, storageFailure(err)
	}

	order.Status = newStatus
	order.Tracking = append(order.Tracking, entry)

	if err := s.events.PublishOrderStatus(models.OrderStatusEvent{
		OrderID:   orderID,
		Status:    newStatus,
		Note:      note,
		Timestamp: entry.Timestamp,
	}); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("failed to publish order.status")
	}

	log.Info().Str("order_id", orderID).Str("status", newStatus).Msg("order status updated")
	return order, nil
}
