package config

import "time"

type RatesAPIConfig struct {
	BaseURL        string `yaml:"url"`
	Key            string `yaml:"api-key"`
	TimeoutSeconds int64  `yaml:"timeout-seconds"`
}

func (r *RatesAPIConfig) URL() string {
	return r.BaseURL
}

func (r *RatesAPIConfig) ApiKey() string {
	return r.Key
}

func (r *RatesAPIConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}
