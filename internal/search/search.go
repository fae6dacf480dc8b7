package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Indexer mirrors catalog writes into a full-text index.
type Indexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, q string) ([]models.Product, error)
}

type ESIndex struct {
	ES    *elasticsearch.Client
	Index string
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

func NewClient(cfg Config) (*ESIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &ESIndex{ES: client, Index: cfg.Index}, nil
}

func (s *ESIndex) Ping(ctx context.Context) error {
	res, err := s.ES.Info(s.ES.Info.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}
	return nil
}

func (s *ESIndex) IndexProduct(ctx context.Context, p *models.Product) error {
	doc := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"price":       p.Price,
		"image":       p.Image,
		"createdAt":   p.CreatedAt,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}

	res, err := s.ES.Index(s.Index, &buf,
		s.ES.Index.WithDocumentID(p.ID),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}

func (s *ESIndex) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.ES.Delete(s.Index, id, s.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete product: %s", res.Status())
	}
	return nil
}

func (s *ESIndex) Search(ctx context.Context, q string) ([]models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search: decode: %w", err)
	}

	prods := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p := hit.Source
		p.ID = strings.TrimSpace(hit.ID)
		prods = append(prods, p)
	}
	return prods, nil
}
