package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	o.ID = newID()
	return translateGorm(r.DB.WithContext(ctx).Create(o).Error)
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.DB.WithContext(ctx).Order("order_date DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.DB.WithContext(ctx).
		Where("email = ?", email).
		Order("order_date DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var order models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, translateGorm(err)
	}
	return &order, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, translateGorm(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetOrder(ctx, id)
}
