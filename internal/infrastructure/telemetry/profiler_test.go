package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler(t *testing.T) {
	t.Run("disabled profiler is a no-op", func(t *testing.T) {
		p, err := NewProfiler(config.TelemetryConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("enabled profiler requires a server", func(t *testing.T) {
		_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true}, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server address")
	})

	t.Run("unknown profile type is rejected", func(t *testing.T) {
		_, err := NewProfiler(config.TelemetryConfig{
			ProfilingEnabled: true,
			ProfilingServer:  "http://localhost:4040",
			ProfileTypes:     []string{"cpu", "heap"},
		}, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "heap")
	})
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes([]string{"CPU", " mutex ", "cpu"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, types)
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Route":      "/api/v1/scans/deduct",
		"method":     "POST",
		"scan_id":    "scan-123",
		"empty":      "",
		"Operation!": strings.Repeat("x", MaxLabelValueLength+10),
	})

	require.Len(t, pairs, 6)
	assert.Equal(t, []string{"method", "POST", "operation"}, pairs[:3])
	assert.Len(t, pairs[3], MaxLabelValueLength)
	assert.Equal(t, []string{"route", "/api/v1/scans/deduct"}, pairs[4:])
	assert.Nil(t, sanitizeLabels(nil))
}

func TestWithProfilingLabels(t *testing.T) {
	var route string
	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelRoute: "/api/v1/products",
	}, func(ctx context.Context) {
		route, _ = pprof.Label(ctx, ProfilingLabelRoute)
	})
	assert.Equal(t, "/api/v1/products", route)

	called := false
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}
