package model

// ChatStatistics accompanies assistant answers that touched resources
type ChatStatistics struct {
	TotalResources int     `json:"total_resources" yaml:"total_resources"`
	TotalCost      float64 `json:"total_cost" yaml:"total_cost"`
}

// ChatRequest is the body of POST /ai/chat
type ChatRequest struct {
	Query     string  `json:"query"`
	SessionID *string `json:"session_id"`
}

// ChatResponse is the response of POST /ai/chat
type ChatResponse struct {
	Response   string          `json:"response" yaml:"response"`
	Resources  []Resource      `json:"resources,omitempty" yaml:"resources,omitempty"`
	Statistics *ChatStatistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	SessionID  string          `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

// CRUDRequest is the body of POST /ai/crud
type CRUDRequest struct {
	Instruction string `json:"instruction"`
	Department  string `json:"department"`
}

// CRUDResponse is the response of POST /ai/crud
type CRUDResponse struct {
	Operation string `json:"operation" yaml:"operation"`
	Details   string `json:"details" yaml:"details"`
}

// AIStatus is the response of GET /ai/status
type AIStatus struct {
	GroqAPIConfigured bool `json:"groq_api_configured" yaml:"groq_api_configured"`
}
