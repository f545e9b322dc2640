package services

import (
	"fmt"
	"strings"

	"github.com/blavejr/storefrontAI/models"
)

// ProductText renders a product into the single descriptive sentence used for
// embedding. Deterministic and byte-stable: the embedding cache keys off this
// text, so the field order and delimiters must never change. Missing optional
// fields render as empty segments.
func ProductText(p models.Product) string {
	return fmt.Sprintf("%s. %s. Category: %s. Tags: %s",
		p.Name, p.Description, p.Category, strings.Join(p.Tags, ", "))
}
