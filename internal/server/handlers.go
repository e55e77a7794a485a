// internal/server/handlers.go
package server

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"support-chatbot/internal/admin"
	"support-chatbot/internal/chat"
	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/validation"
	"support-chatbot/internal/models"
)

type ChatService interface {
	Execute(ctx context.Context, input *chat.Input) (*chat.Output, error)
}

type HistoryReader interface {
	History(ctx context.Context, userID string) ([]models.HistoryEntry, error)
}

type CatalogReader interface {
	OrderStatus(ctx context.Context, orderID string) (models.OrderStatus, error)
	UserOrders(ctx context.Context, userID string) ([]models.OrderSummary, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	FindProduct(ctx context.Context, identifier string) (*models.ProductInfo, error)
	ListWarranties(ctx context.Context) ([]models.WarrantyListing, error)
}

type AdminService interface {
	Clear(ctx context.Context) (*admin.ClearResult, error)
	Seed(ctx context.Context) (*admin.SeedResult, error)
	Reset(ctx context.Context) (*admin.ResetResult, error)
	Status(ctx context.Context) (*admin.StatusResult, error)
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

var chatRequestSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"user_id": {"type": "string", "minLength": 1, "maxLength": 128},
		"message": {"type": "string", "minLength": 1, "maxLength": 4000}
	},
	"required": ["user_id", "message"]
}`)

type handlers struct {
	chat    ChatService
	history HistoryReader
	catalog CatalogReader
	admin   AdminService
	checks  map[string]Pinger
	errs    *apperrors.ErrorHandler
}

func (h *handlers) fail(c *gin.Context, err error) {
	status, body := h.errs.Handle(c.FullPath(), err)
	c.AbortWithStatusJSON(status, body)
}

func (h *handlers) postChat(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.fail(c, apperrors.NewInvalidRequestError("unreadable request body"))
		return
	}

	result, err := chatRequestSchema.ValidateBytes(raw)
	if err != nil {
		h.fail(c, apperrors.NewInvalidRequestError("request body is not valid JSON"))
		return
	}
	if !result.Valid {
		h.fail(c, apperrors.NewInvalidRequestError(strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	var input chat.Input
	if err := binding.JSON.BindBody(raw, &input); err != nil {
		h.fail(c, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	output, err := h.chat.Execute(c.Request.Context(), &input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *handlers) getHistory(c *gin.Context) {
	entries, err := h.history.History(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handlers) getOrder(c *gin.Context) {
	orderID := c.Param("order_id")
	st, err := h.catalog.OrderStatus(c.Request.Context(), orderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !st.Found {
		h.fail(c, apperrors.NewNotFoundError("Order", orderID))
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *handlers) getUserOrders(c *gin.Context) {
	orders, err := h.catalog.UserOrders(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) getProduct(c *gin.Context) {
	id := c.Param("id")
	info, err := h.catalog.FindProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if info == nil {
		h.fail(c, apperrors.NewNotFoundError("Product", id))
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) listWarranties(c *gin.Context) {
	warranties, err := h.catalog.ListWarranties(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, warranties)
}

func (h *handlers) clearDatabase(c *gin.Context) {
	res, err := h.admin.Clear(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) seedDatabase(c *gin.Context) {
	res, err := h.admin.Seed(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) resetDatabase(c *gin.Context) {
	res, err := h.admin.Reset(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) databaseStatus(c *gin.Context) {
	res, err := h.admin.Status(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *handlers) ready(c *gin.Context) {
	checks := make(map[string]string, len(h.checks))
	ready := true
	for name, p := range h.checks {
		if err := p.Ping(c.Request.Context()); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
