package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	require.NotNil(t, m)

	m.CounterRequests.WithLabelValues("GET", "/ping", "200").Inc()
	m.CounterCompensations.WithLabelValues("create_program", "ok").Inc()
	m.GaugeEditorSessions.Set(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "/ping", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GaugeEditorSessions))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
