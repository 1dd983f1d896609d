package dto

// ParseRequest carries a free-text scheduling instruction.
type ParseRequest struct {
	Text string `json:"text" validate:"required,min=3"`
}

// ParseResponse is the structured interpretation of the instruction.
type ParseResponse struct {
	Intent     string            `json:"intent"`
	Entities   map[string]string `json:"entities"`
	Confidence float64           `json:"confidence"`
	Unmatched  []string          `json:"unmatched_terms,omitempty"`
}
