// internal/intent/action.go
package intent

import (
	"encoding/json"
	"strings"

	"support-chatbot/internal/common/validation"
	"support-chatbot/internal/models"
)

// ActionKind classifies what the model's output asked for.
type ActionKind int

const (
	// ActionAbsent covers missing, malformed and schema-invalid action objects.
	ActionAbsent ActionKind = iota
	// ActionNone is an explicit {"action":"none"}.
	ActionNone
	// ActionTool names a tool. The name is not checked against the registry here.
	ActionTool
)

type ParsedAction struct {
	Kind   ActionKind
	Action models.ResolvedAction
	// Reply is the model text with the action object removed.
	Reply string
}

var actionSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"action": {"type": "string", "minLength": 1},
		"action_input": {"type": ["string", "null"]}
	},
	"required": ["action"]
}`)

// ParseAction extracts the first balanced JSON object from the model output and interprets it as
// an action. It never fails; anything unusable yields ActionAbsent.
func ParseAction(text string) ParsedAction {
	start, end, ok := firstObject(text)
	if !ok {
		return ParsedAction{Kind: ActionAbsent, Reply: strings.TrimSpace(text)}
	}

	candidate := text[start:end]
	reply := strings.TrimSpace(text[:start] + text[end:])

	result, err := actionSchema.ValidateBytes([]byte(candidate))
	if err != nil || !result.Valid {
		return ParsedAction{Kind: ActionAbsent, Reply: reply}
	}

	var raw struct {
		Action      string  `json:"action"`
		ActionInput *string `json:"action_input"`
	}
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return ParsedAction{Kind: ActionAbsent, Reply: reply}
	}

	tool := models.ToolName(strings.ToLower(strings.TrimSpace(raw.Action)))
	if tool == "" {
		return ParsedAction{Kind: ActionAbsent, Reply: reply}
	}

	input := ""
	if raw.ActionInput != nil {
		input = strings.TrimSpace(*raw.ActionInput)
	}

	kind := ActionTool
	if tool == models.ToolNone {
		kind = ActionNone
	}
	return ParsedAction{
		Kind: kind,
		Action: models.ResolvedAction{
			Tool:   tool,
			Input:  input,
			Source: models.SourceModel,
		},
		Reply: reply,
	}
}

// firstObject returns the byte span of the first balanced {...} in text, honouring JSON strings.
func firstObject(text string) (start, end int, ok bool) {
	start = strings.IndexByte(text, '{')
	if start < 0 {
		return 0, 0, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		}
	}
	return 0, 0, false
}
