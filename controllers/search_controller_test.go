package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blavejr/storefrontAI/config"
	"github.com/blavejr/storefrontAI/models"
	"github.com/blavejr/storefrontAI/services"
	"github.com/blavejr/storefrontAI/storage"
)

type failingEmbedder struct{}

func (failingEmbedder) Load(ctx context.Context) error { return errors.New("model failed to load") }
func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding call failed")
}
func (failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding call failed")
}

type failingStore struct{}

func (failingStore) AllProducts(ctx context.Context) ([]models.Product, error) {
	return nil, errors.New("connection reset")
}
func (failingStore) Categories(ctx context.Context) ([]string, error) {
	return nil, errors.New("connection reset")
}

func testCatalog() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "WaveRider Speaker", Description: "Waterproof bluetooth speaker", Category: "Electronics/Audio", Tags: []string{"speaker"}, Price: 6999, Currency: "USD"},
		{ID: "p2", Name: "ChefSteel Knives", Description: "Forged kitchen knives", Category: "Home/Kitchen", Tags: []string{"kitchen"}, Price: 12950, Currency: "USD"},
		{ID: "p3", Name: "Castle Bricks", Description: "Castle building set", Category: "Toys/LEGO", Tags: []string{"kids"}, Price: 14999, Currency: "USD"},
	}
}

func newTestRouter(t *testing.T, embedder services.Embedder) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{TopK: 20}
	store := storage.NewMemoryStore(testCatalog())
	search := services.NewSearchService(store, embedder, cfg.TopK)
	controller := NewSearchController(cfg, store, search)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/search", controller.Search)
	api.GET("/semantic-search", controller.SemanticSearch)
	api.GET("/products", controller.Products)
	api.GET("/categories", controller.Categories)
	return router
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func decodeSearchResponse(t *testing.T, w *httptest.ResponseRecorder) models.SearchResponse {
	t.Helper()
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func localEmbedder() services.Embedder {
	return services.NewOllamaEmbedder("", "simple", time.Second)
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(t, localEmbedder())

	w := doRequest(router, "/api/search?query=kitchen")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeSearchResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, models.MethodKeyword, resp.SearchMethod)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "p2", resp.Results[0].ID)
	assert.Equal(t, "$129.50", resp.Results[0].DisplayPrice)
}

func TestSemanticSearchEndpoint(t *testing.T) {
	router := newTestRouter(t, localEmbedder())

	w := doRequest(router, "/api/semantic-search?query=waterproof+bluetooth+speaker")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeSearchResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, models.MethodSemantic, resp.SearchMethod)
	assert.Empty(t, resp.FallbackReason)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "p1", resp.Results[0].ID)
}

func TestSemanticSearchEndpointNoQuery(t *testing.T) {
	router := newTestRouter(t, localEmbedder())

	w := doRequest(router, "/api/semantic-search")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeSearchResponse(t, w)
	assert.Equal(t, models.MethodNone, resp.SearchMethod)
	assert.Equal(t, 3, resp.Count)
}

func TestSemanticSearchEndpointCategoryOnly(t *testing.T) {
	router := newTestRouter(t, localEmbedder())

	w := doRequest(router, "/api/semantic-search?category=Toys%2FLEGO")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeSearchResponse(t, w)
	assert.Equal(t, models.MethodCategoryOnly, resp.SearchMethod)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "p3", resp.Results[0].ID)
}

func TestSemanticSearchEndpointFallback(t *testing.T) {
	router := newTestRouter(t, failingEmbedder{})

	w := doRequest(router, "/api/semantic-search?query=speaker")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeSearchResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, models.MethodKeyword, resp.SearchMethod)
	assert.NotEmpty(t, resp.FallbackReason)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "p1", resp.Results[0].ID)
}

func TestSemanticSearchEndpointStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{TopK: 20}
	search := services.NewSearchService(failingStore{}, localEmbedder(), cfg.TopK)
	controller := NewSearchController(cfg, failingStore{}, search)

	router := gin.New()
	router.GET("/api/semantic-search", controller.SemanticSearch)

	w := doRequest(router, "/api/semantic-search?query=speaker")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to perform search", body["error"])
}

func TestProductsEndpoint(t *testing.T) {
	router := newTestRouter(t, localEmbedder())

	w := doRequest(router, "/api/products")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success  bool             `json:"success"`
		Products []models.Product `json:"products"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "$69.99", body.Products[0].DisplayPrice)
}

func TestCategoriesEndpoint(t *testing.T) {
	router := newTestRouter(t, localEmbedder())

	w := doRequest(router, "/api/categories")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success    bool     `json:"success"`
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, []string{"Electronics/Audio", "Home/Kitchen", "Toys/LEGO"}, body.Categories)
}

func TestSemanticSearchEndpointTopKParam(t *testing.T) {
	router := newTestRouter(t, localEmbedder())

	w := doRequest(router, "/api/semantic-search?query=set&top_k=1")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeSearchResponse(t, w)
	assert.LessOrEqual(t, resp.Count, 1)
}
