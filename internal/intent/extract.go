// internal/intent/extract.go
package intent

import (
	"context"
	"strings"

	"support-chatbot/internal/common/logger"
)

// Entities are the references found in one message. Empty fields mean "not found".
type Entities struct {
	OrderID         string
	ProductID       string
	ProductFragment string
	ProductName     string
}

// FindOrderRef returns the first order reference in text, upper-cased.
func FindOrderRef(text string) string {
	return strings.ToUpper(orderRefPattern.FindString(text))
}

// FindProductID returns the first product id in text, upper-cased.
func FindProductID(text string) string {
	return strings.ToUpper(productIDPattern.FindString(text))
}

// Extractor pulls entities from a message using the pattern cache for product names.
type Extractor struct {
	cache  *PatternCache
	logger logger.Logger
}

func NewExtractor(cache *PatternCache, log logger.Logger) *Extractor {
	return &Extractor{
		cache:  cache,
		logger: log.With(map[string]interface{}{"component": "extractor"}),
	}
}

// Extract never fails: a pattern cache error only drops the product-name entity.
func (e *Extractor) Extract(ctx context.Context, message string) Entities {
	ent := Entities{
		OrderID:   FindOrderRef(message),
		ProductID: FindProductID(message),
	}

	set, err := e.cache.Get(ctx)
	if err != nil {
		e.logger.Warn("Product patterns unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return ent
	}
	if fragment, canonical, ok := set.Match(message); ok {
		ent.ProductFragment = fragment
		ent.ProductName = canonical
	}
	return ent
}
