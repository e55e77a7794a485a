// internal/chat/handler.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/common/observability"
	"support-chatbot/internal/intent"
	"support-chatbot/internal/llm"
	"support-chatbot/internal/models"
)

const (
	outcomeTool     = "tool"
	outcomeReply    = "reply"
	outcomeClarify  = "clarify"
	outcomeLLMError = "llm_error"
	outcomeError    = "error"
)

// ConversationLog is the append-only turn log the pipeline reads and writes.
type ConversationLog interface {
	Append(ctx context.Context, userID string, role models.Role, content string) (*models.ConversationTurn, error)
	Recent(ctx context.Context, userID string, limit int) ([]models.ConversationTurn, error)
}

// LanguageModel suggests an action and a reply for the current message.
type LanguageModel interface {
	Generate(ctx context.Context, history []models.ConversationTurn, message string) (string, error)
}

// Handler runs the intent pipeline for one message at a time. It holds no per-request state.
type Handler struct {
	config    *Config
	turns     ConversationLog
	catalog   Catalog
	model     LanguageModel
	extractor *intent.Extractor
	fallback  *intent.FallbackClassifier
	safeguard *intent.WarrantySafeguard
	obs       *observability.Observability
	logger    logger.Logger
}

type Dependencies struct {
	Turns     ConversationLog
	Catalog   Catalog
	Model     LanguageModel
	Patterns  *intent.PatternCache
	Telemetry *observability.Observability
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	obs := deps.Telemetry
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Handler{
		config:    config,
		turns:     deps.Turns,
		catalog:   deps.Catalog,
		model:     deps.Model,
		extractor: intent.NewExtractor(deps.Patterns, log),
		fallback:  intent.NewFallbackClassifier(nil),
		safeguard: intent.NewWarrantySafeguard(deps.Catalog, log),
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "chat_pipeline"}),
	}
}

// Execute resolves exactly one action for the message, runs it, and persists the turns it produced.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}

	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, "chat.execute", attribute.String("user.id", input.UserID))
	defer span.End()

	output, outcome, err := h.execute(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("chat.outcome", outcome))

	metrics.ChatRequests.WithLabelValues(outcome).Inc()
	h.obs.RecordChatProcessed(ctx, outcome)
	h.obs.RecordChatDuration(ctx, time.Since(start), outcome)
	return output, err
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, string, error) {
	userID := strings.TrimSpace(input.UserID)
	message := strings.TrimSpace(input.Message)
	if userID == "" || message == "" {
		return nil, outcomeError, apperrors.NewInvalidRequestError("user_id and message must not be empty")
	}

	log := h.logger.With(map[string]interface{}{"userId": userID})

	if _, err := h.turns.Append(ctx, userID, models.RoleUser, message); err != nil {
		return nil, outcomeError, err
	}

	history, err := h.turns.Recent(ctx, userID, h.config.HistoryLimit)
	if err != nil {
		return nil, outcomeError, err
	}

	text, err := h.model.Generate(ctx, history, message)
	if err != nil {
		log.Error("Language model call failed", map[string]interface{}{"error": err.Error()})
		if errors.Is(err, llm.ErrLLMTimeout) {
			return nil, outcomeLLMError, apperrors.NewLLMTimeoutError(err)
		}
		return nil, outcomeLLMError, apperrors.NewLLMGatewayFailedError(err)
	}

	parsed := intent.ParseAction(text)
	action, hasAction := models.ResolvedAction{}, false
	if parsed.Kind == intent.ActionTool {
		action, hasAction = parsed.Action, true
	}

	resolution := h.safeguard.Resolve(ctx, userID, message, history)
	switch resolution.Kind {
	case intent.ResolutionAskProduct:
		log.Info("Warranty question without product, asking for clarification", nil)
		if _, err := h.turns.Append(ctx, userID, models.RoleAssistant, intent.ClarifyProductReply); err != nil {
			return nil, outcomeError, err
		}
		return &Output{Reply: intent.ClarifyProductReply}, outcomeClarify, nil
	case intent.ResolutionAction:
		if hasAction && parsed.Action != resolution.Action {
			log.Debug("Safeguard overrides model action", map[string]interface{}{
				"modelTool":  string(parsed.Action.Tool),
				"modelInput": parsed.Action.Input,
			})
		}
		action, hasAction = resolution.Action, true
		log.Debug("Warranty product resolved", map[string]interface{}{"via": resolution.Via})
	}

	if !hasAction {
		entities := h.extractor.Extract(ctx, message)
		if fallback, rule, ok := h.fallback.Classify(message, entities); ok && fallback.IsTool() {
			action, hasAction = fallback, true
			log.Debug("Fallback rule matched", map[string]interface{}{
				"rule":            rule,
				"productFragment": entities.ProductFragment,
			})
		}
	}

	if !hasAction {
		reply := parsed.Reply
		if reply == "" {
			reply = defaultReply
		}
		if _, err := h.turns.Append(ctx, userID, models.RoleAssistant, reply); err != nil {
			return nil, outcomeError, err
		}
		return &Output{Reply: reply}, outcomeReply, nil
	}

	metrics.ChatActions.WithLabelValues(string(action.Tool), string(action.Source)).Inc()
	log.Info("Action resolved", map[string]interface{}{
		"tool":   string(action.Tool),
		"input":  action.Input,
		"source": string(action.Source),
	})

	result, err := h.runTool(ctx, action, toolCall{
		UserID:  userID,
		Input:   action.Input,
		Message: message,
		History: history,
	})
	if err != nil {
		return nil, outcomeError, err
	}

	record, err := json.Marshal(toolRecord{Tool: string(action.Tool), Output: result.Output})
	if err != nil {
		return nil, outcomeError, apperrors.Normalize(err)
	}
	if _, err := h.turns.Append(ctx, userID, models.RoleTool, string(record)); err != nil {
		return nil, outcomeError, err
	}
	if _, err := h.turns.Append(ctx, userID, models.RoleAssistant, result.Reply); err != nil {
		return nil, outcomeError, err
	}

	tool := string(action.Tool)
	return &Output{Reply: result.Reply, ToolCalled: &tool, ToolOutput: result.Output}, outcomeTool, nil
}

// runTool dispatches through the registry. Unknown tool names produce a fixed reply, not an error.
func (h *Handler) runTool(ctx context.Context, action models.ResolvedAction, call toolCall) (toolResult, error) {
	ctx, span := h.obs.StartSpan(ctx, "chat.tool",
		attribute.String("tool.name", string(action.Tool)),
		attribute.String("tool.source", string(action.Source)),
	)
	defer span.End()

	fn, ok := toolRegistry[action.Tool]
	if !ok {
		unsupported := apperrors.NewUnsupportedToolError(string(action.Tool))
		h.logger.Warn("Unsupported tool requested", map[string]interface{}{
			"tool":      string(action.Tool),
			"errorCode": string(unsupported.Code),
		})
		span.RecordError(unsupported)
		h.obs.RecordToolExecuted(ctx, string(action.Tool), false)
		return toolResult{
			Output: unsupportedTool{Error: strings.ToLower(string(unsupported.Code))},
			Reply:  unsupportedToolReply(action.Tool),
		}, nil
	}

	result, err := fn(ctx, h.catalog, call)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return toolResult{}, err
	}
	span.SetAttributes(attribute.Bool("tool.found", result.Found))
	h.obs.RecordToolExecuted(ctx, string(action.Tool), result.Found)
	return result, nil
}
