package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
)

// CatalogService serves products and their reviews. Index is optional;
// when nil, search falls back to the store.
type CatalogService struct {
	Repo   repo.ProductRepo
	Events events.Publisher
	Index  search.Indexer
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	now := time.Now().UTC()
	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Reviews:     stampReviews(req.Reviews, now),
		CreatedAt:   now,
	}
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}

	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, fromRepo(err)
	}

	s.index(ctx, product)
	publish(ctx, s.Events, events.TopicProducts, product.ID, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
		"price":     product.Price,
	})
	return product, nil
}

func (s *CatalogService) ReplaceProduct(ctx context.Context, id string, req transport.ProductRequest) (*models.Product, error) {
	updated, err := s.Repo.ReplaceProduct(ctx, id, &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Reviews:     stampReviews(req.Reviews, time.Now().UTC()),
	})
	if err != nil {
		return nil, fromRepo(err)
	}

	s.index(ctx, updated)
	publish(ctx, s.Events, events.TopicProducts, updated.ID, map[string]any{
		"type":      "product_updated",
		"productID": updated.ID,
		"name":      updated.Name,
		"price":     updated.Price,
	})
	return updated, nil
}

// DeleteProduct succeeds whether or not the product existed.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return fromRepo(err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_unindex_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) AddReview(ctx context.Context, id string, req transport.ReviewRequest) error {
	rating, err := CoerceRating(req.Rating)
	if err != nil {
		return err
	}

	review := models.Review{
		User:    req.User,
		Rating:  rating,
		Comment: req.Comment,
		Date:    time.Now().UTC(),
	}
	if req.Date != nil && !req.Date.IsZero() {
		review.Date = req.Date.UTC()
	}

	if err := s.Repo.AddReview(ctx, id, review); err != nil {
		return fromRepo(err)
	}

	publish(ctx, s.Events, events.TopicProducts, id, map[string]any{
		"type":      "product_reviewed",
		"productID": id,
		"user":      review.User,
		"rating":    review.Rating,
	})
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrValidation)
	}
	if s.Index != nil {
		return s.Index.Search(ctx, q)
	}
	return s.Repo.SearchProducts(ctx, q)
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "product_id", p.ID, "error", err)
	}
}

// stampReviews dates every review that arrived without one.
func stampReviews(reviews []models.Review, now time.Time) []models.Review {
	for i := range reviews {
		if reviews[i].Date.IsZero() {
			reviews[i].Date = now
		}
	}
	return reviews
}

// CoerceRating converts a raw JSON rating to a number the way a loose
// numeric cast does: null, "" and false are 0, true is 1, numeric strings
// are parsed. A missing rating, a non-numeric string, NaN, infinities,
// arrays and objects are rejected.
func CoerceRating(raw json.RawMessage) (float64, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return 0, fmt.Errorf("%w: rating is required", ErrValidation)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: rating: %v", ErrValidation, err)
	}

	switch r := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if r {
			return 1, nil
		}
		return 0, nil
	case float64:
		return r, nil
	case string:
		s := strings.TrimSpace(r)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: rating %q is not a number", ErrValidation, r)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: rating has type %T", ErrValidation, v)
}
