package telemetry

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Summary(t *testing.T) {
	c := NewCollector("test")
	c.FramePresented(0.016)
	c.FramePresented(0.034)
	c.FrameSkipped()
	c.SwapChainResized()

	s := c.Summary()
	assert.Equal(t, uint64(2), s.Frames)
	assert.Equal(t, uint64(1), s.SkippedFrames)
	assert.Equal(t, uint64(1), s.Resizes)
	assert.InDelta(t, 0.05, s.FrameSeconds, 1e-6)
}

func TestCollector_SubsystemGauge(t *testing.T) {
	c := NewCollector("")
	c.SubsystemStarted("jobs", 250*time.Millisecond)
	assert.InDelta(t, 0.25, testutil.ToFloat64(c.subsystem.WithLabelValues("jobs")), 1e-9)

	n, err := testutil.GatherAndCount(c.Registry(), "horizon_subsystem_start_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("horizon")
	c.FramePresented(0.02)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "horizon_frame_presented_total 1")
}
