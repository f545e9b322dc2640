package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/blavejr/storefrontAI/config"
	"github.com/blavejr/storefrontAI/controllers"
	"github.com/blavejr/storefrontAI/services"
	"github.com/blavejr/storefrontAI/storage"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		// usage: go run main.go seed [catalog_file]
		runSeed()
		return
	}

	runServer()
}

func runServer() {
	cfg := config.Load()

	var store controllers.CatalogStore
	closeStore := func() {}

	if cfg.CatalogFile != "" {
		memStore, err := storage.LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			log.Fatalf("Failed to load catalog file: %v", err)
		}
		store = memStore
		log.Printf("Serving catalog from file: %s", cfg.CatalogFile)
	} else {
		mongoStore, err := storage.NewMongoStore(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		if err := mongoStore.EnsureIndexes(); err != nil {
			log.Printf("Note: index creation skipped: %v", err)
		}
		store = mongoStore
		closeStore = func() { _ = mongoStore.Close() }
	}
	defer closeStore()

	embedder := services.NewOllamaEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel, cfg.EmbedTimeout)
	if err := embedder.Load(context.Background()); err != nil {
		log.Printf("Warning: embedding provider probe failed (semantic search will fall back to keyword): %v", err)
	} else {
		log.Println("Embedding provider ready")
	}

	searchService := services.NewSearchService(store, embedder, cfg.TopK)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	searchController := controllers.NewSearchController(cfg, store, searchService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "storefrontAI",
		})
	})

	api := router.Group("/api")
	{
		api.GET("/search", searchController.Search)
		api.GET("/semantic-search", searchController.SemanticSearch)
		api.GET("/products", searchController.Products)
		api.GET("/categories", searchController.Categories)
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Product search server starting on %s", addr)
	log.Printf("MongoDB: %s", cfg.MongoDatabase)
	log.Printf("Ollama: %s (model: %s)", cfg.OllamaURL, cfg.OllamaEmbedModel)
	log.Printf("Environment: %s", cfg.Environment)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func runSeed() {
	log.Println("Starting catalog seed...")

	cfg := config.Load()

	store, err := storage.NewMongoStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()

	path := "data/products.json"
	if len(os.Args) > 2 {
		path = os.Args[2]
	}

	products, err := storage.ReadProductsFile(path)
	if err != nil {
		log.Fatalf("Failed to read catalog file: %v", err)
	}
	log.Printf("Loaded %d products from %s", len(products), path)

	ctx := context.Background()
	if err := store.ReplaceCatalog(ctx, products); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	count, err := store.CountProducts(ctx)
	if err != nil {
		log.Fatalf("Failed to count products: %v", err)
	}

	log.Printf("Seed complete! Catalog now holds %d products", count)
}
