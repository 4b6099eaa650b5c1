package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/logger"
)

type config interface {
	Enabled() bool
	ServiceName() string
	AgentHostPort() string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init installs a Jaeger tracer as the global one. When tracing is disabled the
// global no-op tracer stays in place.
func Init(config config) (io.Closer, error) {
	if !config.Enabled() {
		return nopCloser{}, nil
	}

	cfg := jaegercfg.Configuration{
		ServiceName: config.ServiceName(),
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: config.AgentHostPort(),
		},
	}

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaeger.NullLogger))
	if err != nil {
		return nil, errors.Wrap(err, "cannot init tracing")
	}
	opentracing.SetGlobalTracer(tracer)
	logger.Info("tracing enabled", zap.String("service", config.ServiceName()))
	return closer, nil
}
