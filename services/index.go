package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/blavejr/storefrontAI/models"
)

// IndexSnapshot is an immutable view of the built embedding index: one vector
// per product, positions matching the catalog snapshot used at build time.
type IndexSnapshot struct {
	IDs     []string
	Vectors [][]float32
}

// Len returns the number of indexed products.
func (s *IndexSnapshot) Len() int {
	return len(s.IDs)
}

// VectorIndex holds the process-wide embedding index. It is built lazily on
// first use and replaced wholesale on rebuild, never mutated in place.
// Concurrent first-time builds coalesce into a single provider call.
type VectorIndex struct {
	embedder Embedder

	mu   sync.RWMutex
	snap *IndexSnapshot

	group singleflight.Group
}

func NewVectorIndex(embedder Embedder) *VectorIndex {
	return &VectorIndex{
		embedder: embedder,
	}
}

// EnsureBuilt builds the index from the given catalog snapshot if it does not
// exist yet. Subsequent calls are cheap no-ops. On any provider failure the
// index is left unset and the error is returned; the caller decides whether to
// fall back. The index is never partially built.
func (x *VectorIndex) EnsureBuilt(ctx context.Context, products []models.Product) error {
	if x.Built() {
		return nil
	}

	_, err, _ := x.group.Do("build", func() (interface{}, error) {
		// another caller may have finished the build while we waited
		if x.Built() {
			return nil, nil
		}
		return nil, x.build(ctx, products)
	})
	return err
}

func (x *VectorIndex) build(ctx context.Context, products []models.Product) error {
	log.Printf("Building embedding index for %d products...", len(products))
	startTime := time.Now()

	if err := x.embedder.Load(ctx); err != nil {
		return fmt.Errorf("embedding model unavailable: %w", err)
	}

	texts := make([]string, len(products))
	for i, p := range products {
		texts[i] = ProductText(p)
	}

	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed catalog: %w", err)
	}
	if len(vectors) != len(products) {
		return fmt.Errorf("embedder returned %d vectors for %d products", len(vectors), len(products))
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	x.mu.Lock()
	x.snap = &IndexSnapshot{IDs: ids, Vectors: vectors}
	x.mu.Unlock()

	log.Printf("Embedding index built (%d products) in %v", len(products), time.Since(startTime))
	return nil
}

// Built reports whether the index is currently available.
func (x *VectorIndex) Built() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.snap != nil
}

// Snapshot returns the current index for ranking. The second return is false
// when no index has been built.
func (x *VectorIndex) Snapshot() (*IndexSnapshot, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.snap, x.snap != nil
}

// Invalidate clears the cached index, forcing the next EnsureBuilt to
// recompute. Used when the catalog changes.
func (x *VectorIndex) Invalidate() {
	x.mu.Lock()
	x.snap = nil
	x.mu.Unlock()
}
