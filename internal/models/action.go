// internal/models/action.go
package models

type ToolName string

const (
	ToolGetOrderStatus  ToolName = "get_order_status"
	ToolGetWarrantyInfo ToolName = "get_warranty_info"
	ToolGetProductInfo  ToolName = "get_product_info"
	ToolNone            ToolName = "none"
)

// ActionSource records which pipeline stage produced an action.
type ActionSource string

const (
	SourceModel     ActionSource = "model"
	SourceSafeguard ActionSource = "safeguard"
	SourceFallback  ActionSource = "fallback"
)

// ResolvedAction is the single action chosen for a message. Input may be empty, meaning "use context".
type ResolvedAction struct {
	Tool   ToolName     `json:"tool"`
	Input  string       `json:"input"`
	Source ActionSource `json:"-"`
}

// IsTool reports whether the action asks for tool execution.
func (a ResolvedAction) IsTool() bool {
	return a.Tool != "" && a.Tool != ToolNone
}

// ProductPattern pairs a compiled-on-demand regex source with the canonical product name it resolves to.
type ProductPattern struct {
	Pattern       string `json:"pattern"`
	CanonicalName string `json:"canonical_name"`
}
