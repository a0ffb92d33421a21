package models

// Session identifies one run of the monitored agent, as recorded in the
// runtime's session index. All fields besides SessionID are optional.
type Session struct {
	SessionID     string `json:"sessionId"`
	Model         string `json:"model,omitempty"`
	TotalTokens   int    `json:"totalTokens,omitempty"`
	ContextTokens int    `json:"contextTokens,omitempty"`
}

// ContextUsagePercent returns token usage as a 0-100 percentage.
// Returns 0 when token counts are missing or the window size is unknown.
func (s *Session) ContextUsagePercent() int {
	if s.TotalTokens <= 0 || s.ContextTokens <= 0 {
		return 0
	}
	pct := int(float64(s.TotalTokens)/float64(s.ContextTokens)*100 + 0.5)
	if pct > 100 {
		pct = 100
	}
	return pct
}
