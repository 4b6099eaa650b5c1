package assistant

import (
	"fmt"
	"strings"

	"max.ks1230/travel-finances-bot/internal/entity/currency"
)

const blockMediumAndAbove = "BLOCK_MEDIUM_AND_ABOVE"

var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// Prompt is the generateContent request body.
type Prompt struct {
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	Contents          []Content        `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
	SafetySettings    []SafetySetting  `json:"safetySettings"`
}

type generationConfig interface {
	Temperature() float64
	TopK() int
	TopP() float64
	MaxOutputTokens() int
}

// BuildPrompt renders the snapshot into the system instruction and maps the
// transcript onto chat contents. Leading assistant turns are dropped since the
// remote model expects the conversation to open with the user.
func BuildPrompt(config generationConfig, snap Snapshot, tail []Turn) Prompt {
	p := Prompt{
		SystemInstruction: &Content{Parts: []Part{{Text: systemInstruction(snap)}}},
		Contents:          make([]Content, 0, len(tail)),
		GenerationConfig: GenerationConfig{
			Temperature:     config.Temperature(),
			TopK:            config.TopK(),
			TopP:            config.TopP(),
			MaxOutputTokens: config.MaxOutputTokens(),
		},
		SafetySettings: make([]SafetySetting, 0, len(harmCategories)),
	}

	for _, turn := range tail {
		if len(p.Contents) == 0 && turn.Role != RoleUser {
			continue
		}
		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		p.Contents = append(p.Contents, Content{Role: role, Parts: []Part{{Text: turn.Content}}})
	}

	for _, c := range harmCategories {
		p.SafetySettings = append(p.SafetySettings, SafetySetting{Category: c, Threshold: blockMediumAndAbove})
	}
	return p
}

func systemInstruction(s Snapshot) string {
	var b strings.Builder
	b.WriteString("You are a travel finance assistant. You help the user manage trip spending, ")
	b.WriteString("suggest ways to save money and give practical local tips.\n\n")
	b.WriteString("Current financial data of the user:\n")
	fmt.Fprintf(&b, "- Home currency: %s\n", s.HomeCurrency)
	fmt.Fprintf(&b, "- Total spent: %s\n", currency.Format(s.TotalSpent, s.HomeCurrency))
	fmt.Fprintf(&b, "- Spent today: %s\n", currency.Format(s.TodaySpent, s.HomeCurrency))
	fmt.Fprintf(&b, "- Travel budget: %s\n", currency.Format(s.TravelBudget, s.HomeCurrency))
	fmt.Fprintf(&b, "- Remaining budget: %s\n\n", currency.Format(s.RemainingBudget, s.HomeCurrency))
	b.WriteString("Mention these numbers when they are relevant to the question. ")
	b.WriteString("Warn the user when the remaining budget is low or negative. ")
	b.WriteString("Keep answers short, friendly and actionable.")
	return b.String()
}
