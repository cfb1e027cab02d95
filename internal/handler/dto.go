package handler

type UsageResponse struct {
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost"`
	RequestCount     int     `json:"request_count"`
}

type SourceResponse struct {
	Source  string `json:"source"`
	Status  string `json:"status"`
	Targets int    `json:"targets"`
	Error   string `json:"error,omitempty"`
}

type BriefResponse struct {
	RunID       string           `json:"run_id"`
	Topic       string           `json:"topic"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	Text        string           `json:"text"`
	NoContent   bool             `json:"no_content"`
	Records     int              `json:"records"`
	Usage       UsageResponse    `json:"usage"`
	Sources     []SourceResponse `json:"sources"`
	GeneratedAt string           `json:"generated_at"`
}
