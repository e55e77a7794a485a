// internal/intent/patterns.go
package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/models"
)

// minSignificantWordLen is the shortest product-name word that gets its own pattern, exclusive.
const minSignificantWordLen = 3

// CatalogSource supplies products in catalog iteration order.
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// PatternSet is one derivation of product patterns, compiled for matching.
type PatternSet struct {
	Patterns []models.ProductPattern
	BuiltAt  time.Time
	compiled []*regexp.Regexp
}

// NewPatternSet compiles the given patterns.
func NewPatternSet(patterns []models.ProductPattern, builtAt time.Time) (*PatternSet, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p.Pattern, err)
		}
		compiled[i] = re
	}
	return &PatternSet{Patterns: patterns, BuiltAt: builtAt, compiled: compiled}, nil
}

// Match returns the first pattern hit in text: the matched fragment and the product it resolves to.
func (s *PatternSet) Match(text string) (fragment, canonical string, ok bool) {
	if s == nil {
		return "", "", false
	}
	for i, re := range s.compiled {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		fragment = m[0]
		if len(m) > 1 {
			fragment = m[1]
		}
		return fragment, s.Patterns[i].CanonicalName, true
	}
	return "", "", false
}

// DerivePatterns builds the ordered pattern list: per product the full lower-cased name, then
// every word longer than minSignificantWordLen, all as case-insensitive whole-word matches.
func DerivePatterns(products []models.Product) []models.ProductPattern {
	patterns := make([]models.ProductPattern, 0, len(products)*3)
	for _, p := range products {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			continue
		}
		patterns = append(patterns, models.ProductPattern{
			Pattern:       wholeWord(name),
			CanonicalName: p.Name,
		})
		for _, word := range strings.Fields(name) {
			if utf8.RuneCountInString(word) > minSignificantWordLen {
				patterns = append(patterns, models.ProductPattern{
					Pattern:       wholeWord(word),
					CanonicalName: p.Name,
				})
			}
		}
	}
	return patterns
}

// Go's \b is ASCII-only, so word edges are spelled out with Unicode classes and the name is group 1.
const (
	wordStart = `(?i)(?:^|[^\p{L}\p{N}_])(`
	wordEnd   = `)(?:$|[^\p{L}\p{N}_])`
)

func wholeWord(s string) string {
	return wordStart + regexp.QuoteMeta(s) + wordEnd
}

// CacheStatus describes the cached derivation without triggering a rebuild.
type CacheStatus struct {
	PatternsCached  bool `json:"patterns_cached"`
	PatternCount    int  `json:"pattern_count"`
	CacheAgeSeconds *int `json:"cache_age_seconds"`
}

// PatternCache serves product patterns, rebuilding them from the catalog after the TTL or an
// explicit Invalidate. Concurrent rebuilds may race; the last save wins and both are equivalent.
type PatternCache struct {
	source CatalogSource
	store  PatternStore
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

func NewPatternCache(source CatalogSource, store PatternStore, ttl time.Duration, log logger.Logger) *PatternCache {
	return &PatternCache{
		source: source,
		store:  store,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "pattern_cache", "backend": store.Name()}),
		now:    time.Now,
	}
}

func (c *PatternCache) fresh(set *PatternSet) bool {
	return set != nil && c.now().Sub(set.BuiltAt) < c.ttl
}

// Get returns the current pattern set, rebuilding it when missing or expired.
func (c *PatternCache) Get(ctx context.Context) (*PatternSet, error) {
	set, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("Pattern cache load failed, rebuilding from catalog", map[string]interface{}{
			"error": err.Error(),
		})
	} else if c.fresh(set) {
		return set, nil
	}

	products, err := c.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog for patterns: %w", err)
	}

	set, err = NewPatternSet(DerivePatterns(products), c.now())
	if err != nil {
		return nil, err
	}
	metrics.PatternCacheRebuilds.WithLabelValues(c.store.Name()).Inc()

	if err := c.store.Save(ctx, set, c.ttl); err != nil {
		c.logger.Warn("Pattern cache save failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	c.logger.Debug("Pattern cache rebuilt", map[string]interface{}{
		"products": len(products),
		"patterns": len(set.Patterns),
	})
	return set, nil
}

// Invalidate drops the cached derivation so the next Get rebuilds it.
func (c *PatternCache) Invalidate(ctx context.Context) error {
	if err := c.store.Delete(ctx); err != nil {
		return fmt.Errorf("invalidate pattern cache: %w", err)
	}
	c.logger.Info("Pattern cache invalidated", nil)
	return nil
}

// Status reports whether a fresh derivation is cached and how old it is.
func (c *PatternCache) Status(ctx context.Context) CacheStatus {
	set, err := c.store.Load(ctx)
	if err != nil || !c.fresh(set) {
		return CacheStatus{}
	}
	age := int(c.now().Sub(set.BuiltAt).Seconds())
	return CacheStatus{
		PatternsCached:  true,
		PatternCount:    len(set.Patterns),
		CacheAgeSeconds: &age,
	}
}
