package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrInvalidID = errors.New("invalid id")
)

type ProductRepo interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	ReplaceProduct(ctx context.Context, id string, p *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddReview(ctx context.Context, id string, r models.Review) error
	SearchProducts(ctx context.Context, q string) ([]models.Product, error)
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type OrderRepo interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error)
}

type SubscriberRepo interface {
	CreateSubscriber(ctx context.Context, s *models.Subscriber) error
}

// Store is the single shared handle every resource family goes through.
type Store interface {
	ProductRepo
	UserRepo
	OrderRepo
	SubscriberRepo

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*MongoRepo)(nil)
	_ Store = (*GormRepo)(nil)
)
