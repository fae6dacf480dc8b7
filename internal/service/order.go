package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrderService struct {
	Repo   repo.OrderRepo
	Events events.Publisher
}

// CreateOrder stores the body as given. Status and order date are
// filled in only when the caller left them out.
func (s *OrderService) CreateOrder(ctx context.Context, req transport.OrderRequest) (*models.Order, error) {
	order := &models.Order{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Address:      req.Address,
		Phone:        req.Phone,
		Items:        req.Items,
		TotalAmount:  req.TotalAmount,
		Status:       req.Status,
		OrderDate:    time.Now().UTC(),
	}
	if order.Items == nil {
		order.Items = []map[string]any{}
	}
	if order.Status == "" {
		order.Status = models.DefaultOrderStatus
	}
	if req.OrderDate != nil && !req.OrderDate.IsZero() {
		order.OrderDate = req.OrderDate.UTC()
	}

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, fromRepo(err)
	}

	publish(ctx, s.Events, events.TopicOrders, order.ID, map[string]any{
		"type":        "order_created",
		"orderID":     order.ID,
		"email":       order.Email,
		"totalAmount": order.TotalAmount,
		"status":      order.Status,
	})
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}

func (s *OrderService) ListOrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return s.Repo.ListOrdersByEmail(ctx, email)
}

// UpdateStatus stores any string, the empty one included, with no
// transition check. A nil status leaves the order as it is.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status *string) (*models.Order, error) {
	if status == nil {
		order, err := s.Repo.GetOrder(ctx, id)
		if err != nil {
			return nil, fromRepo(err)
		}
		return order, nil
	}

	order, err := s.Repo.UpdateOrderStatus(ctx, id, *status)
	if err != nil {
		return nil, fromRepo(err)
	}

	publish(ctx, s.Events, events.TopicOrders, order.ID, map[string]any{
		"type":    "order_status_updated",
		"orderID": order.ID,
		"status":  order.Status,
	})
	return order, nil
}
