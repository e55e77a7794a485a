// internal/llm/client.go
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	commonhttp "support-chatbot/internal/common/http"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/models"
)

var (
	ErrLLMTimeout       = errors.New("LLM_TIMEOUT")
	ErrLLMGatewayFailed = errors.New("LLM_GATEWAY_FAILED")
)

// maxLineBytes bounds a single NDJSON line from the generate stream.
const maxLineBytes = 1 << 20

// ProductLister feeds the product list into the prompt.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Gateway calls an Ollama-compatible /api/generate endpoint.
type Gateway struct {
	config   *Config
	client   *commonhttp.Client
	products ProductLister
	logger   logger.Logger
}

func NewGateway(config *Config, products ProductLister, log logger.Logger) *Gateway {
	return &Gateway{
		config:   config,
		client:   commonhttp.NewClient(0),
		products: products,
		logger:   log.With(map[string]interface{}{"component": "llm_gateway", "model": config.Model}),
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Generate renders the prompt from recent turns (most recent first) and the current message,
// then returns the concatenated streamed completion.
func (g *Gateway) Generate(ctx context.Context, history []models.ConversationTurn, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	start := time.Now()
	text, err := g.generate(ctx, BuildPrompt(g.listProducts(ctx), history, message))
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, ErrLLMTimeout) {
			status = "timeout"
		}
	}
	metrics.LLMRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err != nil {
		g.logger.Error("LLM call failed", map[string]interface{}{
			"error":    err.Error(),
			"duration": time.Since(start).String(),
		})
		return "", err
	}

	g.logger.Debug("LLM call completed", map[string]interface{}{
		"duration":    time.Since(start).String(),
		"outputBytes": len(text),
	})
	return text, nil
}

func (g *Gateway) listProducts(ctx context.Context) []models.Product {
	if g.products == nil {
		return nil
	}
	products, err := g.products.ListProducts(ctx)
	if err != nil {
		g.logger.Warn("Product list unavailable for prompt", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return products
}

func (g *Gateway) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  g.config.Model,
		Prompt: prompt,
		Stream: true,
		Options: generateOptions{
			Temperature: g.config.Temperature,
			NumPredict:  g.config.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrLLMGatewayFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMGatewayFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := g.client.DoWithContext(ctx, req)
	if err != nil {
		return "", g.classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrLLMGatewayFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("%w: decode stream line: %v", ErrLLMGatewayFailed, err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrLLMGatewayFailed, chunk.Error)
		}
		out.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", g.classify(ctx, err)
	}

	return strings.TrimSpace(out.String()), nil
}

func (g *Gateway) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrLLMTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrLLMGatewayFailed, err)
}
