package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
)

const (
	defaultConfigFile = "data/config.yaml"
	configFileEnv     = "CONFIG_FILE"
)

type config struct {
	App       AppConfig       `yaml:"app"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	RatesAPI  RatesAPIConfig  `yaml:"rates-api"`
	Assistant AssistantConfig `yaml:"assistant"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type Service struct {
	config config
}

// New loads .env (if any), the YAML file and env overrides.
func New() (*Service, error) {
	_ = godotenv.Load()

	path := os.Getenv(configFileEnv)
	if path == "" {
		path = defaultConfigFile
	}
	return FromFile(path)
}

func FromFile(path string) (*Service, error) {
	rawYAML, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	return FromYAML(rawYAML)
}

func FromYAML(rawYAML []byte) (*Service, error) {
	s := &Service{config: defaults()}

	err := yaml.Unmarshal(rawYAML, &s.config)
	if err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}

	s.applyEnv()
	if err = s.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return s, nil
}

func defaults() config {
	return config{
		App: AppConfig{
			AnchorCurrencyName:      string(currency.DefaultAnchor),
			RatePullingDelayMinutes: 60,
			RecentTransactions:      10,
		},
		RatesAPI: RatesAPIConfig{
			BaseURL:        "https://v6.exchangerate-api.com/v6",
			TimeoutSeconds: 10,
		},
		Assistant: AssistantConfig{
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta/models",
			ModelName:       "gemini-1.5-flash",
			TimeoutSeconds:  30,
			Temp:            0.7,
			TopKValue:       40,
			TopPValue:       0.95,
			MaxTokens:       500,
			HistoryTurnsNum: 10,
		},
		Storage: StorageConfig{
			DriverName: DriverSQLite,
			FilePath:   "data/travel_finances.sqlite",
		},
		Tracing: TracingConfig{
			Service: "travel-finances-bot",
		},
	}
}

func (s *Service) applyEnv() {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		s.config.Telegram.ApiToken = v
	}
	if v := os.Getenv("TELEGRAM_OWNER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.config.Telegram.Owner = id
		}
	}
	if v := os.Getenv("RATES_API_KEY"); v != "" {
		s.config.RatesAPI.Key = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		s.config.Assistant.Key = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		s.config.Storage.Pswd = v
	}
}

func (s *Service) validate() error {
	anchor, err := currency.Parse(s.config.App.AnchorCurrencyName)
	if err != nil {
		return errors.Wrap(err, "app.anchor-currency")
	}
	s.config.App.AnchorCurrencyName = string(anchor)
	switch s.config.Storage.DriverName {
	case DriverSQLite, DriverPostgres:
	default:
		return errors.Errorf("unknown storage driver %q", s.config.Storage.DriverName)
	}
	if s.config.App.RatePullingDelayMinutes < 0 {
		return errors.New("app.rate-pulling-delay-minutes must not be negative")
	}
	return nil
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) Telegram() *TelegramConfig {
	return &s.config.Telegram
}

func (s *Service) RatesAPI() *RatesAPIConfig {
	return &s.config.RatesAPI
}

func (s *Service) Assistant() *AssistantConfig {
	return &s.config.Assistant
}

func (s *Service) Storage() *StorageConfig {
	return &s.config.Storage
}

func (s *Service) Metrics() *MetricsConfig {
	return &s.config.Metrics
}

func (s *Service) Tracing() *TracingConfig {
	return &s.config.Tracing
}
