package tracing

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type disabled struct{}

func (disabled) Enabled() bool         { return false }
func (disabled) ServiceName() string   { return "test" }
func (disabled) AgentHostPort() string { return "" }

func Test_OnDisabled_ShouldKeepNoopTracer(t *testing.T) {
	closer, err := Init(disabled{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())

	_, isNoop := opentracing.GlobalTracer().(opentracing.NoopTracer)
	assert.True(t, isNoop)
}
