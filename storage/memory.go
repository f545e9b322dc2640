package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/blavejr/storefrontAI/models"
)

// MemoryStore is an in-memory catalog with the same surface as MongoStore.
// Used for tests and for running against a JSON catalog file without MongoDB.
type MemoryStore struct {
	mu       sync.RWMutex
	products []models.Product
}

func NewMemoryStore(products []models.Product) *MemoryStore {
	s := &MemoryStore{}
	s.install(products)
	return s
}

// LoadCatalogFile reads a products JSON file and returns a store serving it.
func LoadCatalogFile(path string) (*MemoryStore, error) {
	products, err := ReadProductsFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(products), nil
}

// ReadProductsFile parses a catalog file of the form {"products": [...]}.
func ReadProductsFile(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file struct {
		Products []models.Product `json:"products"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return file.Products, nil
}

// AllProducts returns a copy of the catalog in stable insertion order.
func (s *MemoryStore) AllProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, len(s.products))
	copy(products, s.products)
	return products, nil
}

// Categories returns the distinct category labels in the catalog, sorted.
func (s *MemoryStore) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range s.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)

	return categories, nil
}

// CountProducts returns the total number of products in the catalog.
func (s *MemoryStore) CountProducts(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

// ReplaceCatalog swaps the catalog wholesale, mirroring MongoStore semantics.
func (s *MemoryStore) ReplaceCatalog(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return fmt.Errorf("no products to insert")
	}
	s.install(products)
	return nil
}

func (s *MemoryStore) install(products []models.Product) {
	installed := make([]models.Product, len(products))
	for i, p := range products {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.Position = i
		installed[i] = p
	}

	s.mu.Lock()
	s.products = installed
	s.mu.Unlock()
}
