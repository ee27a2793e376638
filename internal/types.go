package internal

import "time"

// Exchange is one completed chat run as kept in the history.
type Exchange struct {
	ID              string         `json:"id"`
	Request         string         `json:"request"`
	Echo            string         `json:"echo"`
	FinalText       string         `json:"final_text"`
	Provider        string         `json:"provider"`
	Model           string         `json:"model"`
	WorkingLanguage string         `json:"working_language"`
	UserLanguage    string         `json:"user_language"`
	Calls           []ExchangeCall `json:"calls,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// ExchangeCall is a single model call within an Exchange.
type ExchangeCall struct {
	Seq       int    `json:"seq"`
	Stage     string `json:"stage"`
	Prompt    string `json:"prompt"`
	Output    string `json:"output"`
	LatencyMs int64  `json:"latency_ms"`
}
