package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pos/internal/domain/models"
)

// Provider fetches the full product catalog.
type Provider interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// Service caches the catalog and answers product queries from memory.
type Service struct {
	provider Provider
	logger   *zap.Logger

	mu          sync.RWMutex
	products    []models.Product
	byID        map[int]models.Product
	refreshedAt time.Time
}

// NewService wires a new catalog service instance.
func NewService(provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		logger:   logger,
		byID:     make(map[int]models.Product),
	}
}

// Refresh replaces the cached catalog with a fresh copy from the provider. On
// failure the previous catalog is kept.
func (s *Service) Refresh(ctx context.Context) error {
	products, err := s.provider.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	byID := make(map[int]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	s.mu.Lock()
	s.products = products
	s.byID = byID
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("catalog refreshed", zap.Int("products", len(products)))
	return nil
}

// All returns every cached product in backend order.
func (s *Service) All() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

// Search returns products whose name contains query, ignoring case. A blank
// query returns the whole catalog.
func (s *Service) Search(query string) []models.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.All()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			matches = append(matches, p)
		}
	}
	return matches
}

// Product looks a product up by id.
func (s *Service) Product(id int) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return models.Product{}, models.NewValidationError(fmt.Sprintf("product %d is not in the catalog", id), models.ErrUnknownProduct)
	}
	return p, nil
}

// RefreshedAt reports when the catalog was last loaded.
func (s *Service) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}
