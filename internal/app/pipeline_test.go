package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/walletscope/internal/adapters/host"
	logAdapter "github.com/bft-labs/walletscope/internal/adapters/log"
	"github.com/bft-labs/walletscope/internal/domain"
)

func TestPipeline_Emit(t *testing.T) {
	ch := &recordingChannel{}
	m := NewMetrics(nil)
	p := NewPipeline(ch, host.NewWindow(testURL), testLibrary, logAdapter.NewNoopLogger(), m)

	require.NoError(t, p.Emit(domain.EventPage, nil, true))
	require.NoError(t, p.Emit(domain.EventClick, domain.Attributes{"elementId": "x"}, false))
	p.Flush()

	envs := ch.Envelopes()
	require.Len(t, envs, 2)
	assert.Equal(t, "", envs[0].LibraryType)
	assert.NotNil(t, envs[0].Attributes)
	assert.Equal(t, testLibrary, envs[1].LibraryType)
	assert.Equal(t, testURL, envs[1].URL)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.eventsEmitted.WithLabelValues("PAGE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.eventsEmitted.WithLabelValues("CLICK")))
}

func TestPipeline_DeliveryFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"disconnected", domain.ErrDisconnected, DropDisconnected},
		{"write failed", errors.New("broken pipe"), DropWriteFailed},
		{"channel closed", domain.ErrClosed, DropClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &recordingChannel{err: tt.err}
			m := NewMetrics(nil)
			p := NewPipeline(ch, host.NewWindow(testURL), testLibrary, logAdapter.NewNoopLogger(), m)

			require.NoError(t, p.Emit(domain.EventPage, nil, false))
			p.Flush()
			assert.Equal(t, float64(1), testutil.ToFloat64(m.eventsDropped.WithLabelValues("PAGE", tt.reason)))
		})
	}
}

func TestPipeline_EmitAfterClose(t *testing.T) {
	ch := &recordingChannel{}
	m := NewMetrics(nil)
	p := NewPipeline(ch, host.NewWindow(testURL), testLibrary, logAdapter.NewNoopLogger(), m)

	require.NoError(t, p.Emit(domain.EventPage, nil, false))
	require.NoError(t, p.Close(context.Background()))
	require.NoError(t, p.Close(context.Background()))

	assert.Len(t, ch.Envelopes(), 1)
	assert.ErrorIs(t, p.Emit(domain.EventClick, nil, false), domain.ErrClosed)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.eventsDropped.WithLabelValues("CLICK", DropClosed)))
}

func TestPipeline_EmitDoesNotWaitForChannel(t *testing.T) {
	ch := &recordingChannel{delay: 200 * time.Millisecond}
	m := NewMetrics(nil)
	p := newPipeline(ch, host.NewWindow(testURL), testLibrary, logAdapter.NewNoopLogger(), m, 1)
	defer func() { _ = p.Close(context.Background()) }()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Emit(domain.EventClick, nil, false))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	p.Flush()
	delivered := len(ch.Envelopes())
	assert.GreaterOrEqual(t, delivered, 1)
	assert.LessOrEqual(t, delivered, 2)
	assert.Equal(t, float64(5-delivered), testutil.ToFloat64(m.eventsDropped.WithLabelValues("CLICK", DropQueueFull)))
}

func TestMetrics_Register(t *testing.T) {
	m := NewMetrics(nil)
	require.NoError(t, m.Register())
	require.NoError(t, m.Register())

	var nilMetrics *Metrics
	require.NoError(t, nilMetrics.Register())
	nilMetrics.EventEmitted(domain.EventPage)
	nilMetrics.SetChannelConnected(true)

	m.SetChannelConnected(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.channelConnected))
	m.DiagnosticReported(domain.LogLevelWarning)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.diagnostics.WithLabelValues("warning")))
}
