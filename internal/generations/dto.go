package generations

// generateRequest is the POST /generate body. Pointers distinguish an
// omitted field from an explicit zero value.
type generateRequest struct {
	Text        string `json:"text"`
	Tone        string `json:"tone"`
	Mode        string `json:"mode"`
	SaveHistory *bool  `json:"save_history"`
}

// GenerateResponse is the success body of POST /generate.
type GenerateResponse struct {
	Success       bool   `json:"success"`
	RewrittenText string `json:"rewritten_text"`
	Tone          string `json:"tone"`
	Mode          string `json:"mode"`
	Timestamp     string `json:"timestamp"`
	Provider      string `json:"provider,omitempty"`
	HTML          string `json:"html,omitempty"`
	HistoryID     string `json:"history_id,omitempty"`
}
