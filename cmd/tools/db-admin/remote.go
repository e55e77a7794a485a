// cmd/tools/db-admin/remote.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "support-chatbot/internal/common/errors"
	commonhttp "support-chatbot/internal/common/http"
)

// adminRoutes maps CLI commands to the server's /database endpoints.
var adminRoutes = map[string]struct {
	method string
	path   string
}{
	"clear":  {http.MethodDelete, "/database/clear"},
	"seed":   {http.MethodPost, "/database/seed"},
	"reset":  {http.MethodPost, "/database/reset"},
	"status": {http.MethodGet, "/database/status"},
}

// remoteAdmin runs admin commands through a running server so its in-process pattern cache is invalidated.
type remoteAdmin struct {
	baseURL string
	token   string
	client  *commonhttp.Client
}

func newRemoteAdmin(baseURL, token string, timeout time.Duration) *remoteAdmin {
	return &remoteAdmin{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  commonhttp.NewClient(timeout),
	}
}

func (r *remoteAdmin) run(ctx context.Context, command string) (json.RawMessage, error) {
	route, ok := adminRoutes[command]
	if !ok {
		return nil, fmt.Errorf("command %q is not served by the admin API", command)
	}

	req, err := http.NewRequest(route.method, r.baseURL+route.path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("X-Admin-Token", r.token)
	}

	resp, err := r.client.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", route.method, route.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope apperrors.ErrorBody
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
			return nil, fmt.Errorf("server returned %d %s: %s %s",
				resp.StatusCode, envelope.Error.Code, envelope.Error.Message, envelope.Error.Details)
		}
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return json.RawMessage(body), nil
}

// serverURL turns a listen address such as ":8000" into a base URL.
func serverURL(address string) string {
	if strings.HasPrefix(address, "http://") || strings.HasPrefix(address, "https://") {
		return address
	}
	if strings.HasPrefix(address, ":") {
		return "http://localhost" + address
	}
	return "http://" + address
}
