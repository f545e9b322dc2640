package services

import (
	"strings"

	"github.com/blavejr/storefrontAI/models"
)

// KeywordFilter returns products whose name, description, category, or any tag
// contains the query, case-insensitively. An empty query matches everything.
// This is the baseline search and the fallback when embeddings are unavailable.
func KeywordFilter(products []models.Product, query string) []models.Product {
	if query == "" {
		return products
	}

	searchTerm := strings.ToLower(query)

	matched := make([]models.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), searchTerm) ||
			strings.Contains(strings.ToLower(p.Description), searchTerm) ||
			strings.Contains(strings.ToLower(p.Category), searchTerm) ||
			tagsContain(p.Tags, searchTerm) {
			matched = append(matched, p)
		}
	}
	return matched
}

func tagsContain(tags []string, searchTerm string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), searchTerm) {
			return true
		}
	}
	return false
}

// CategoryFilter narrows products to those whose category exactly equals the
// given full hierarchical label, preserving input order. It never re-sorts:
// applied after ranking, it must not disturb rank order.
func CategoryFilter(products []models.Product, category string) []models.Product {
	matched := make([]models.Product, 0)
	for _, p := range products {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched
}
