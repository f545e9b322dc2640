package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// CatalogFile, when set, serves the catalog from a JSON file instead of MongoDB.
	CatalogFile string

	OllamaURL        string // "http://localhost:11434"
	OllamaEmbedModel string

	Port        string
	Environment string

	TopK         int
	EmbedTimeout time.Duration
}

func Load() *Config {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	getEnv := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		return defaultValue
	}

	getEnvInt := func(key string, defaultValue int) int {
		valueStr := os.Getenv(key)
		if valueStr == "" {
			return defaultValue
		}
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return defaultValue
		}
		return value
	}

	return &Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "storefront_db"),
		MongoCollection: getEnv("MONGO_COLLECTION", "products"),

		CatalogFile: getEnv("CATALOG_FILE", ""),

		// Ollama
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel: getEnv("OLLAMA_EMBEDDING_MODEL", "simple"),

		// Application settings
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Search
		TopK:         getEnvInt("TOP_K", 20),
		EmbedTimeout: time.Duration(getEnvInt("EMBED_TIMEOUT_SECONDS", 60)) * time.Second,
	}
}
