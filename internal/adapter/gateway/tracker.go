package gateway

import (
	"log/slog"
	"time"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// Record is one gateway call's performance measurement. Token counts
// are rough estimates derived from text length.
type Record struct {
	Class        port.ModelClass
	Backend      string
	Model        string
	Duration     time.Duration
	InputTokens  int
	OutputTokens int
	OK           bool
	Err          string
}

// Tracker emits performance records for observability. Publishing is
// fire-and-forget: a full buffer drops the record rather than blocking
// or failing the caller's request.
type Tracker struct {
	ch     chan Record
	done   chan struct{}
	logger *slog.Logger
}

// NewTracker starts the drain goroutine with the given buffer size.
func NewTracker(logger *slog.Logger, buffer int) *Tracker {
	if buffer <= 0 {
		buffer = 64
	}
	t := &Tracker{
		ch:     make(chan Record, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go t.drain()
	return t
}

// Publish enqueues a record, dropping it when the buffer is full.
func (t *Tracker) Publish(r Record) {
	select {
	case t.ch <- r:
	default:
	}
}

// Close stops the drain goroutine after flushing buffered records.
func (t *Tracker) Close() {
	close(t.ch)
	<-t.done
}

func (t *Tracker) drain() {
	defer close(t.done)
	for r := range t.ch {
		attrs := []any{
			slog.String("class", string(r.Class)),
			slog.String("backend", r.Backend),
			slog.String("model", r.Model),
			slog.Duration("duration", r.Duration),
			slog.Int("input_tokens", r.InputTokens),
			slog.Int("output_tokens", r.OutputTokens),
			slog.Bool("ok", r.OK),
		}
		if r.Err != "" {
			attrs = append(attrs, slog.String("error", r.Err))
		}
		t.logger.Info("gateway completion", attrs...)
	}
}

// estimateTokens approximates a token count from text length.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
