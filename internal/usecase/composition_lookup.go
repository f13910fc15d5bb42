package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

// Package-level compiled regex patterns for cache keys
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// CompositionLookup resolves packaged products against the composition
// database, consulting the product cache first.
// Flow: barcode (cache -> API) -> name search (cache -> API) -> first result with nutrients
type CompositionLookup struct {
	client domain.CompositionClient
	cache  domain.ProductCache
}

// NewCompositionLookup creates a lookup; cache may be nil.
func NewCompositionLookup(client domain.CompositionClient, cache domain.ProductCache) *CompositionLookup {
	return &CompositionLookup{client: client, cache: cache}
}

// Find returns the best product for a barcode and/or search query, or nil
// when nothing with nutrient data was found. Lookup failures are logged and
// treated as no match.
func (l *CompositionLookup) Find(ctx context.Context, barcode, query string) *domain.CompositionProduct {
	if l == nil || l.client == nil {
		return nil
	}
	if barcode = strings.TrimSpace(barcode); barcode != "" {
		if product := l.byBarcode(ctx, barcode); product != nil {
			return product
		}
	}
	if query = strings.TrimSpace(query); query != "" {
		return l.bySearch(ctx, query)
	}
	return nil
}

func (l *CompositionLookup) byBarcode(ctx context.Context, barcode string) *domain.CompositionProduct {
	key := fmt.Sprintf("composition:barcode:%s", barcode)
	if product, hit := l.fromCache(ctx, key); hit {
		return product
	}

	product, err := l.client.GetProductByBarcode(ctx, barcode)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			log.Printf("[ENRICH] Barcode lookup failed for %s: %v", barcode, err)
			return nil
		}
		product = nil
	}
	if product != nil && !product.Per100.HasNutrients() {
		product = nil
	}
	l.toCache(ctx, key, product)
	return product
}

func (l *CompositionLookup) bySearch(ctx context.Context, query string) *domain.CompositionProduct {
	key := fmt.Sprintf("composition:search:%s", normalizeForCacheKey(query))
	if product, hit := l.fromCache(ctx, key); hit {
		return product
	}

	results, err := l.client.SearchProducts(ctx, query)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		log.Printf("[ENRICH] Search failed for %q: %v", query, err)
		return nil
	}

	var found *domain.CompositionProduct
	for i := range results {
		if results[i].Per100.HasNutrients() {
			p := results[i]
			found = &p
			break
		}
	}
	l.toCache(ctx, key, found)
	return found
}

// fromCache reports hit=true for both cached products and cached misses.
func (l *CompositionLookup) fromCache(ctx context.Context, key string) (*domain.CompositionProduct, bool) {
	if l.cache == nil {
		return nil, false
	}
	product, err := l.cache.Get(ctx, key)
	switch {
	case err == nil:
		return product, true
	case errors.Is(err, domain.ErrProductNotFound):
		return nil, true
	default:
		return nil, false
	}
}

func (l *CompositionLookup) toCache(ctx context.Context, key string, product *domain.CompositionProduct) {
	if l.cache == nil {
		return
	}
	var err error
	if product == nil {
		err = l.cache.SetNotFound(ctx, key)
	} else {
		err = l.cache.Set(ctx, key, product)
	}
	if err != nil {
		log.Printf("[ENRICH] Cache write failed for %s: %v", key, err)
	}
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
