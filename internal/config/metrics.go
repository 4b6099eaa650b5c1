package config

type MetricsConfig struct {
	ListenAddr string `yaml:"addr"`
}

// Addr is where /metrics is served, empty disables the endpoint.
func (m *MetricsConfig) Addr() string {
	return m.ListenAddr
}

type TracingConfig struct {
	On      bool   `yaml:"enabled"`
	Service string `yaml:"service-name"`
	Agent   string `yaml:"agent"`
}

func (t *TracingConfig) Enabled() bool {
	return t.On
}

func (t *TracingConfig) ServiceName() string {
	return t.Service
}

func (t *TracingConfig) AgentHostPort() string {
	return t.Agent
}
