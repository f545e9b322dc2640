package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blavejr/storefrontAI/config"
	"github.com/blavejr/storefrontAI/models"
	"github.com/blavejr/storefrontAI/services"
)

// CatalogStore is what the route layer needs from the product store.
type CatalogStore interface {
	AllProducts(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type SearchController struct {
	config *config.Config
	store  CatalogStore
	search *services.SearchService
}

func NewSearchController(cfg *config.Config, store CatalogStore, search *services.SearchService) *SearchController {
	return &SearchController{
		config: cfg,
		store:  store,
		search: search,
	}
}

// Search handles GET /api/search - plain keyword search over the catalog.
func (sc *SearchController) Search(c *gin.Context) {
	query := c.Query("query")
	category := c.Query("category")

	resp, err := sc.search.KeywordSearch(c.Request.Context(), query, category)
	if err != nil {
		log.Printf("Search API error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to search products",
		})
		return
	}

	decoratePrices(resp.Results)
	c.JSON(http.StatusOK, resp)
}

// SemanticSearch handles GET /api/semantic-search - meaning-based retrieval
// with keyword fallback.
func (sc *SearchController) SemanticSearch(c *gin.Context) {
	query := c.Query("query")
	category := c.Query("category")

	topK := sc.config.TopK
	if raw := c.Query("top_k"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			topK = parsed
		}
	}

	log.Printf("Incoming search request: query=%q category=%q top_k=%d", query, category, topK)

	resp, err := sc.search.SemanticSearch(c.Request.Context(), query, category, topK)
	if err != nil {
		log.Printf("Search API error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to perform search",
		})
		return
	}

	if resp.FallbackReason != "" {
		log.Printf("Fallback search returned %d results (%s)", resp.Count, resp.FallbackReason)
	} else {
		log.Printf("%s search returned %d results", resp.SearchMethod, resp.Count)
	}

	decoratePrices(resp.Results)
	c.JSON(http.StatusOK, resp)
}

// Products handles GET /api/products - the full catalog.
func (sc *SearchController) Products(c *gin.Context) {
	products, err := sc.store.AllProducts(c.Request.Context())
	if err != nil {
		log.Printf("Failed to load products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve products",
		})
		return
	}

	decoratePrices(products)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

// Categories handles GET /api/categories - distinct category labels.
func (sc *SearchController) Categories(c *gin.Context) {
	categories, err := sc.store.Categories(c.Request.Context())
	if err != nil {
		log.Printf("Failed to load categories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to retrieve categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
		"count":      len(categories),
	})
}

func decoratePrices(products []models.Product) {
	for i := range products {
		products[i].DisplayPrice = models.FormatPrice(products[i].Price, products[i].Currency)
	}
}
