package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config/configs"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/domain"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// Gateway routes completion calls by model class. The class-to-backend
// mapping lives in configuration, never with the caller. A failing or
// timed-out primary is retried exactly once against the configured
// fallback backend; each attempt emits a performance record through the
// tracker.
type Gateway struct {
	routes   configs.Routes
	backends map[string]Backend
	tracker  *Tracker
	logger   *slog.Logger
}

// New builds a gateway over the given routing table and backends.
func New(routes configs.Routes, backends []Backend, tracker *Tracker, logger *slog.Logger) *Gateway {
	byName := make(map[string]Backend, len(backends))
	for _, b := range backends {
		byName[b.Name()] = b
	}
	return &Gateway{routes: routes, backends: byName, tracker: tracker, logger: logger}
}

// Complete implements port.CompletionGateway.
func (g *Gateway) Complete(ctx context.Context, class port.ModelClass, msgs []port.Message, params port.CallParams) (string, error) {
	route, ok := g.routes[string(class)]
	if !ok {
		return "", fmt.Errorf("%w: no route for model class %q", domain.ErrGenerationFailed, class)
	}

	temperature := route.Temperature
	if params.Temperature > 0 {
		temperature = params.Temperature
	}
	maxTokens := route.MaxTokens
	if params.MaxTokens > 0 {
		maxTokens = params.MaxTokens
	}

	inputTokens := 0
	for _, m := range msgs {
		inputTokens += estimateTokens(m.Content)
	}

	var lastErr error
	attempts := 0
	unusable := false
	for _, name := range route.Backends {
		if attempts >= 2 {
			break
		}
		backend, ok := g.backends[name]
		if !ok {
			lastErr = fmt.Errorf("backend %q not configured", name)
			continue
		}
		attempts++

		callCtx, cancel := context.WithTimeout(ctx, route.Timeout)
		start := time.Now()
		text, err := backend.Complete(callCtx, route.Model, msgs, temperature, maxTokens)
		cancel()

		rec := Record{
			Class:        class,
			Backend:      name,
			Model:        route.Model,
			Duration:     time.Since(start),
			InputTokens:  inputTokens,
			OutputTokens: estimateTokens(text),
			OK:           err == nil && strings.TrimSpace(text) != "",
		}
		if err != nil {
			rec.Err = err.Error()
		}
		g.tracker.Publish(rec)

		if err == nil {
			if strings.TrimSpace(text) == "" {
				lastErr = fmt.Errorf("backend %q returned an empty completion", name)
				unusable = true
				continue
			}
			return text, nil
		}
		unusable = false
		// The owning session was cancelled or reset: stop immediately,
		// the late result must not be applied.
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, ctx.Err())
		}
		g.logger.Warn("backend call failed",
			slog.String("class", string(class)),
			slog.String("backend", name),
			slog.Any("error", err))
		lastErr = err
	}

	// Unusable text means the backend did respond and generation still
	// failed; unavailability is reserved for errored or timed-out calls.
	if attempts > 1 || unusable {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, lastErr)
	}
	return "", fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, lastErr)
}
