package services

import (
	"context"
	"fmt"
	"log"

	"github.com/blavejr/storefrontAI/models"
)

// FallbackReasonUnavailable is the human-readable reason attached to responses
// that degraded from semantic to keyword search.
const FallbackReasonUnavailable = "embedding provider unavailable"

// Catalog is the read-only snapshot view of the product store the search core
// consumes.
type Catalog interface {
	AllProducts(ctx context.Context) ([]models.Product, error)
}

// SearchService is the public entry point for product search. It owns the
// embedding index and decides, per query, between the semantic path and the
// keyword fallback. Semantic failure never surfaces as an error to the caller;
// only catalog-store failures do.
type SearchService struct {
	store       Catalog
	embedder    Embedder
	index       *VectorIndex
	defaultTopK int
}

func NewSearchService(store Catalog, embedder Embedder, defaultTopK int) *SearchService {
	if defaultTopK <= 0 {
		defaultTopK = 20
	}
	return &SearchService{
		store:       store,
		embedder:    embedder,
		index:       NewVectorIndex(embedder),
		defaultTopK: defaultTopK,
	}
}

// SemanticSearch retrieves products for a free-text query with an optional
// exact-category constraint.
//
// Empty query, no category: every product, method "none". Empty query with a
// category: exact-category filter in catalog order, method
// "category-filter-only", no embedding work. Otherwise the embedding index is
// built on demand and the query is ranked against it; any embedding-path
// failure falls back to keyword search with a fallback_reason set.
func (s *SearchService) SemanticSearch(ctx context.Context, query, category string, topK int) (models.SearchResponse, error) {
	products, err := s.store.AllProducts(ctx)
	if err != nil {
		return models.SearchResponse{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	if topK <= 0 {
		topK = s.defaultTopK
	}

	if query == "" && category == "" {
		return response(products, query, category, models.MethodNone, ""), nil
	}

	if query == "" {
		results := CategoryFilter(products, category)
		return response(results, query, category, models.MethodCategoryOnly, ""), nil
	}

	if err := s.index.EnsureBuilt(ctx, products); err != nil {
		log.Printf("Embedding index build failed, falling back to keyword search: %v", err)
		return s.keywordFallback(products, query, category), nil
	}

	// The category hint is appended to the query text before embedding. This
	// is a soft relevance steer, not structured filtering; the hard filter
	// below is what guarantees category membership.
	augmentedQuery := query
	if category != "" {
		augmentedQuery = fmt.Sprintf("%s in category %s", query, category)
	}

	queryVector, err := s.embedder.Embed(ctx, augmentedQuery)
	if err != nil {
		log.Printf("Query embedding failed, falling back to keyword search: %v", err)
		return s.keywordFallback(products, query, category), nil
	}

	snap, ok := s.index.Snapshot()
	if !ok {
		// invalidated between build and rank
		return s.keywordFallback(products, query, category), nil
	}

	candidates := Rank(queryVector, snap, topK)

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	results := make([]models.Product, 0, len(candidates))
	for _, c := range candidates {
		if p, found := byID[c.ID]; found {
			results = append(results, p)
		}
	}

	if category != "" {
		results = CategoryFilter(results, category)
	}

	return response(results, query, category, models.MethodSemantic, ""), nil
}

// KeywordSearch is the plain substring search endpoint, with optional category
// narrowing.
func (s *SearchService) KeywordSearch(ctx context.Context, query, category string) (models.SearchResponse, error) {
	products, err := s.store.AllProducts(ctx)
	if err != nil {
		return models.SearchResponse{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	results := KeywordFilter(products, query)
	if category != "" {
		results = CategoryFilter(results, category)
	}
	return response(results, query, category, models.MethodKeyword, ""), nil
}

// Invalidate clears the embedding index so the next semantic query rebuilds it.
func (s *SearchService) Invalidate() {
	s.index.Invalidate()
}

func (s *SearchService) keywordFallback(products []models.Product, query, category string) models.SearchResponse {
	results := KeywordFilter(products, query)
	if category != "" {
		results = CategoryFilter(results, category)
	}
	return response(results, query, category, models.MethodKeyword, FallbackReasonUnavailable)
}

func response(results []models.Product, query, category, method, fallbackReason string) models.SearchResponse {
	return models.SearchResponse{
		Success:        true,
		Results:        results,
		Count:          len(results),
		Query:          query,
		Category:       category,
		SearchMethod:   method,
		FallbackReason: fallbackReason,
	}
}
