// internal/intent/fallback.go
package intent

import "support-chatbot/internal/models"

// Rule maps a message and its entities to an action. ok is false when the rule does not apply.
type Rule struct {
	Name  string
	Apply func(message string, ent Entities) (action models.ResolvedAction, ok bool)
}

// productRef prefers an explicit id over a resolved name.
func productRef(ent Entities) string {
	if ent.ProductID != "" {
		return ent.ProductID
	}
	return ent.ProductName
}

// DefaultRules is the fallback priority chain. The first rule that applies wins.
var DefaultRules = []Rule{
	{
		Name: "explicit_order_id",
		Apply: func(message string, ent Entities) (models.ResolvedAction, bool) {
			if ent.OrderID == "" {
				return models.ResolvedAction{}, false
			}
			return models.ResolvedAction{Tool: models.ToolGetOrderStatus, Input: ent.OrderID}, true
		},
	},
	{
		Name: "order_intent_keywords",
		Apply: func(message string, ent Entities) (models.ResolvedAction, bool) {
			if !orderIntentPattern.MatchString(message) {
				return models.ResolvedAction{}, false
			}
			return models.ResolvedAction{Tool: models.ToolGetOrderStatus, Input: ""}, true
		},
	},
	{
		Name: "warranty_with_product",
		Apply: func(message string, ent Entities) (models.ResolvedAction, bool) {
			ref := productRef(ent)
			if ref == "" || !warrantyIntentPattern.MatchString(message) {
				return models.ResolvedAction{}, false
			}
			return models.ResolvedAction{Tool: models.ToolGetWarrantyInfo, Input: ref}, true
		},
	},
	{
		Name: "product_info_with_product",
		Apply: func(message string, ent Entities) (models.ResolvedAction, bool) {
			ref := productRef(ent)
			if ref == "" || !productInfoPattern.MatchString(message) {
				return models.ResolvedAction{}, false
			}
			return models.ResolvedAction{Tool: models.ToolGetProductInfo, Input: ref}, true
		},
	},
}

// FallbackClassifier is the deterministic classifier used when the model gives no usable action.
type FallbackClassifier struct {
	rules []Rule
}

func NewFallbackClassifier(rules []Rule) *FallbackClassifier {
	if rules == nil {
		rules = DefaultRules
	}
	return &FallbackClassifier{rules: rules}
}

// Classify returns the first matching rule's action and its name.
func (c *FallbackClassifier) Classify(message string, ent Entities) (models.ResolvedAction, string, bool) {
	for _, r := range c.rules {
		if action, ok := r.Apply(message, ent); ok {
			action.Source = models.SourceFallback
			return action, r.Name, true
		}
	}
	return models.ResolvedAction{}, "", false
}
