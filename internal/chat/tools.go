// internal/chat/tools.go
package chat

import (
	"context"
	"strings"

	"support-chatbot/internal/intent"
	"support-chatbot/internal/models"
)

// Catalog is the subset of the catalog store the tools read from.
type Catalog interface {
	FindProduct(ctx context.Context, identifier string) (*models.ProductInfo, error)
	FindWarranty(ctx context.Context, identifier string) (*models.WarrantyInfo, error)
	UserOrderStatus(ctx context.Context, userID, orderID string) (models.OrderStatus, error)
	LatestOrder(ctx context.Context, userID string) (*models.OrderStatus, error)
}

type toolCall struct {
	UserID  string
	Input   string
	Message string
	History []models.ConversationTurn
}

type toolResult struct {
	Output interface{}
	Reply  string
	Found  bool
}

type toolFunc func(ctx context.Context, catalog Catalog, call toolCall) (toolResult, error)

var toolRegistry = map[models.ToolName]toolFunc{
	models.ToolGetOrderStatus:  getOrderStatus,
	models.ToolGetWarrantyInfo: getWarrantyInfo,
	models.ToolGetProductInfo:  getProductInfo,
}

// getOrderStatus resolves an empty order id from the context turns, then the user's latest order.
func getOrderStatus(ctx context.Context, catalog Catalog, call toolCall) (toolResult, error) {
	orderID := strings.TrimSpace(call.Input)
	if orderID == "" {
		orderID = intent.LastReference(call.History, intent.FindOrderRef)
	}

	var st models.OrderStatus
	if orderID != "" {
		found, err := catalog.UserOrderStatus(ctx, call.UserID, orderID)
		if err != nil {
			return toolResult{}, err
		}
		st = found
	} else {
		latest, err := catalog.LatestOrder(ctx, call.UserID)
		if err != nil {
			return toolResult{}, err
		}
		if latest != nil {
			st = *latest
		}
	}

	return toolResult{Output: st, Reply: orderReply(st), Found: st.Found}, nil
}

func getWarrantyInfo(ctx context.Context, catalog Catalog, call toolCall) (toolResult, error) {
	input := strings.TrimSpace(call.Input)
	if input == "" {
		return toolResult{Output: notFound{Input: input}, Reply: warrantyNotFoundReply(input)}, nil
	}

	info, err := catalog.FindWarranty(ctx, input)
	if err != nil {
		return toolResult{}, err
	}
	if info == nil {
		return toolResult{Output: notFound{Input: input}, Reply: warrantyNotFoundReply(input)}, nil
	}
	return toolResult{Output: info, Reply: warrantyReply(info), Found: true}, nil
}

func getProductInfo(ctx context.Context, catalog Catalog, call toolCall) (toolResult, error) {
	input := strings.TrimSpace(call.Input)
	if input == "" {
		return toolResult{Output: notFound{Input: input}, Reply: productNotFoundReply(input)}, nil
	}

	info, err := catalog.FindProduct(ctx, input)
	if err != nil {
		return toolResult{}, err
	}
	if info == nil {
		return toolResult{Output: notFound{Input: input}, Reply: productNotFoundReply(input)}, nil
	}
	return toolResult{Output: info, Reply: productReply(call.Message, info), Found: true}, nil
}
