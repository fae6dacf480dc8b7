package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translateGorm(err)
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ID = newID()
	return translateGorm(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) ReplaceProduct(ctx context.Context, id string, p *models.Product) (*models.Product, error) {
	prod, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	prod.Name = p.Name
	prod.Description = p.Description
	prod.Price = p.Price
	prod.Category = p.Category
	prod.Image = p.Image
	if p.Reviews != nil {
		prod.Reviews = p.Reviews
	}

	if err := r.DB.WithContext(ctx).Save(prod).Error; err != nil {
		return nil, translateGorm(err)
	}
	return prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

func (r *GormRepo) AddReview(ctx context.Context, id string, review models.Review) error {
	prod, err := r.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	prod.Reviews = append(prod.Reviews, review)
	return translateGorm(r.DB.WithContext(ctx).Save(prod).Error)
}

func (r *GormRepo) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	like := "%" + strings.ToLower(q) + "%"
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", like, like, like).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
