package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config/configs"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

type scriptedBackend struct {
	name  string
	text  string
	err   error
	calls int
}

func (b *scriptedBackend) Name() string { return b.name }

func (b *scriptedBackend) Complete(context.Context, string, []port.Message, float64, int) (string, error) {
	b.calls++
	return b.text, b.err
}

func testRoutes() configs.Routes {
	return configs.Routes{
		"generation": {Backends: []string{"primary", "fallback"}, Model: "test-model", Timeout: time.Second},
		"parsing":    {Backends: []string{"primary"}, Model: "test-model", Timeout: time.Second},
	}
}

func testGateway(t *testing.T, primary, fallback *scriptedBackend) (*Gateway, *Tracker) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := NewTracker(logger, 16)
	t.Cleanup(tracker.Close)
	return New(testRoutes(), []Backend{primary, fallback}, tracker, logger), tracker
}

var testMsgs = []port.Message{{Role: port.RoleUser, Content: "hello"}}

func TestCompletePrimarySucceeds(t *testing.T) {
	primary := &scriptedBackend{name: "primary", text: "ok"}
	fallback := &scriptedBackend{name: "fallback", text: "never"}
	g, _ := testGateway(t, primary, fallback)

	text, err := g.Complete(context.Background(), port.ModelGeneration, testMsgs, port.CallParams{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls, "fallback is not consulted when the primary succeeds")
}

func TestCompleteFallsBackExactlyOnce(t *testing.T) {
	primary := &scriptedBackend{name: "primary", err: errors.New("boom")}
	fallback := &scriptedBackend{name: "fallback", text: "rescued"}
	g, _ := testGateway(t, primary, fallback)

	text, err := g.Complete(context.Background(), port.ModelGeneration, testMsgs, port.CallParams{})
	require.NoError(t, err)
	assert.Equal(t, "rescued", text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestCompleteFallbackExhausted(t *testing.T) {
	primary := &scriptedBackend{name: "primary", err: errors.New("boom")}
	fallback := &scriptedBackend{name: "fallback", err: errors.New("also boom")}
	g, _ := testGateway(t, primary, fallback)

	_, err := g.Complete(context.Background(), port.ModelGeneration, testMsgs, port.CallParams{})
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestCompleteNoFallbackConfigured(t *testing.T) {
	primary := &scriptedBackend{name: "primary", err: errors.New("boom")}
	fallback := &scriptedBackend{name: "fallback", text: "unused"}
	g, _ := testGateway(t, primary, fallback)

	_, err := g.Complete(context.Background(), port.ModelParsing, testMsgs, port.CallParams{})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Zero(t, fallback.calls)
}

func TestCompleteEmptyTextTriggersFallback(t *testing.T) {
	primary := &scriptedBackend{name: "primary", text: "   "}
	fallback := &scriptedBackend{name: "fallback", text: "usable"}
	g, _ := testGateway(t, primary, fallback)

	text, err := g.Complete(context.Background(), port.ModelGeneration, testMsgs, port.CallParams{})
	require.NoError(t, err)
	assert.Equal(t, "usable", text)
}

func TestCompleteEmptyTextWithoutFallbackIsGenerationFailed(t *testing.T) {
	primary := &scriptedBackend{name: "primary", text: "   "}
	fallback := &scriptedBackend{name: "fallback", text: "unused"}
	g, _ := testGateway(t, primary, fallback)

	// The backend responded; the output was just unusable. That is a
	// generation failure, not unavailability.
	_, err := g.Complete(context.Background(), port.ModelParsing, testMsgs, port.CallParams{})
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Zero(t, fallback.calls)
}

func TestCompleteUnknownClass(t *testing.T) {
	g, _ := testGateway(t, &scriptedBackend{name: "primary"}, &scriptedBackend{name: "fallback"})

	_, err := g.Complete(context.Background(), port.ModelClass("nope"), testMsgs, port.CallParams{})
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestCompleteCancelledContextStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := &scriptedBackend{name: "primary", err: context.Canceled}
	fallback := &scriptedBackend{name: "fallback", text: "late"}
	g, _ := testGateway(t, primary, fallback)

	cancel()
	_, err := g.Complete(ctx, port.ModelGeneration, testMsgs, port.CallParams{})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Zero(t, fallback.calls, "a cancelled caller must not reach the fallback")
}

func TestTrackerPublishNeverBlocks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := NewTracker(logger, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			tracker.Publish(Record{Class: port.ModelGeneration, Backend: "primary", OK: true})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
	tracker.Close()
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("hey"))
	assert.Equal(t, 3, estimateTokens("twelve chars"))
}
