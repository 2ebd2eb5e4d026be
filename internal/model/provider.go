package model

// Role is the speaker of one chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a provider conversation. Every backend maps this
// shape onto its own wire format.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CallOptions override backend defaults for a single call. Zero values mean
// "use the backend default".
type CallOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
}

// Usage is the token accounting a backend reports, when it reports any.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Completion is the uniform result of one provider call.
type Completion struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finishReason,omitempty"`
	Usage        Usage  `json:"usage"`
}
