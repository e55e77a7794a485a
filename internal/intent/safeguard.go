// internal/intent/safeguard.go
package intent

import (
	"context"

	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/models"
)

// ResolutionKind is the outcome of the warranty safeguard.
type ResolutionKind int

const (
	// ResolutionNone means the safeguard does not apply.
	ResolutionNone ResolutionKind = iota
	// ResolutionAction carries a concrete warranty lookup that overrides the model.
	ResolutionAction
	// ResolutionAskProduct means no product could be inferred and the user must be asked.
	ResolutionAskProduct
)

// ClarifyProductReply is sent when a warranty question names no product and none can be inferred.
const ClarifyProductReply = "Produk mana yang ingin Anda ketahui informasi garansinya?"

type Resolution struct {
	Kind   ResolutionKind
	Action models.ResolvedAction
	// Via names the step that supplied the product: message, last_order or history.
	Via string
}

// OrderSource supplies a user's most recent order.
type OrderSource interface {
	LatestOrder(ctx context.Context, userID string) (*models.OrderStatus, error)
}

// WarrantySafeguard resolves the product a warranty question refers to.
type WarrantySafeguard struct {
	orders OrderSource
	logger logger.Logger
}

func NewWarrantySafeguard(orders OrderSource, log logger.Logger) *WarrantySafeguard {
	return &WarrantySafeguard{
		orders: orders,
		logger: log.With(map[string]interface{}{"component": "warranty_safeguard"}),
	}
}

// Resolve applies, in order: explicit product id in the message, the user's latest order, then
// the first product id in history as supplied. History is scanned in the order given.
func (s *WarrantySafeguard) Resolve(ctx context.Context, userID, message string, history []models.ConversationTurn) Resolution {
	if !NeedsWarrantyContext(message) {
		return Resolution{Kind: ResolutionNone}
	}

	if id := FindProductID(message); id != "" {
		return warrantyResolution(id, "message")
	}

	order, err := s.orders.LatestOrder(ctx, userID)
	if err != nil {
		s.logger.Warn("Latest order lookup failed, continuing without it", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	} else if order != nil && order.ProductID != "" {
		return warrantyResolution(order.ProductID, "last_order")
	}

	if id := LastReference(history, FindProductID); id != "" {
		return warrantyResolution(id, "history")
	}

	return Resolution{Kind: ResolutionAskProduct}
}

func warrantyResolution(productID, via string) Resolution {
	return Resolution{
		Kind: ResolutionAction,
		Action: models.ResolvedAction{
			Tool:   models.ToolGetWarrantyInfo,
			Input:  productID,
			Source: models.SourceSafeguard,
		},
		Via: via,
	}
}

// LastReference returns the first non-empty find result over turns in the order supplied.
// With the most-recent-first history used by the pipeline this is the latest reference.
func LastReference(turns []models.ConversationTurn, find func(string) string) string {
	for _, t := range turns {
		if ref := find(t.Content); ref != "" {
			return ref
		}
	}
	return ""
}
