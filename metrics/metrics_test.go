package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNodeGaugeTracksCreateAndDestroy(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.NodeCreated("wasm")
	r.NodeCreated("wasm")
	r.NodeDestroyed("wasm")

	m := &dto.Metric{}
	require.NoError(t, r.NodesByType.WithLabelValues("wasm").Write(m))
	require.Equal(t, float64(1), m.GetGauge().GetValue())
}

func TestNilRegistryIsNoOp(t *testing.T) {
	var r *Registry
	require.NotPanics(t, func() {
		r.NodeCreated("x")
		r.ChannelCreated()
		r.HandleCreated()
		r.MessageSent()
		r.MessageReceived()
	})
}
