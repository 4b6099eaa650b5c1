package config

import "time"

type AssistantConfig struct {
	BaseURL         string  `yaml:"url"`
	ModelName       string  `yaml:"model"`
	Key             string  `yaml:"api-key"`
	TimeoutSeconds  int64   `yaml:"timeout-seconds"`
	Temp            float64 `yaml:"temperature"`
	TopKValue       int     `yaml:"top-k"`
	TopPValue       float64 `yaml:"top-p"`
	MaxTokens       int     `yaml:"max-output-tokens"`
	HistoryTurnsNum int     `yaml:"history-turns"`
}

func (a *AssistantConfig) URL() string {
	return a.BaseURL
}

func (a *AssistantConfig) Model() string {
	return a.ModelName
}

func (a *AssistantConfig) ApiKey() string {
	return a.Key
}

func (a *AssistantConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (a *AssistantConfig) Temperature() float64 {
	return a.Temp
}

func (a *AssistantConfig) TopK() int {
	return a.TopKValue
}

func (a *AssistantConfig) TopP() float64 {
	return a.TopPValue
}

func (a *AssistantConfig) MaxOutputTokens() int {
	return a.MaxTokens
}

func (a *AssistantConfig) HistoryTurns() int {
	return a.HistoryTurnsNum
}
