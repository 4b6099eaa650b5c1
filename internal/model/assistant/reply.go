package assistant

import (
	"encoding/json"
	"strings"
)

const FallbackReply = "Sorry, the assistant did not return an answer. Please try again."

type reply struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// FormatReply extracts the first candidate's text. Any deviation from the
// expected shape yields FallbackReply.
func FormatReply(raw []byte) string {
	var r reply
	if err := json.Unmarshal(raw, &r); err != nil {
		return FallbackReply
	}
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return FallbackReply
	}
	text := strings.TrimSpace(r.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return FallbackReply
	}
	return text
}
