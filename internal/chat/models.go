// internal/chat/models.go
package chat

type Input struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Output is the /chat response. ToolCalled and ToolOutput are null when no tool ran.
type Output struct {
	Reply      string      `json:"reply"`
	ToolCalled *string     `json:"tool_called"`
	ToolOutput interface{} `json:"tool_output"`
}

// toolRecord is the content persisted for a tool turn.
type toolRecord struct {
	Tool   string      `json:"tool"`
	Output interface{} `json:"output"`
}

// notFound is the tool output for product and warranty lookups that matched nothing.
type notFound struct {
	Found bool   `json:"found"`
	Input string `json:"input"`
}

type unsupportedTool struct {
	Error string `json:"error"`
}
