package protolog

import (
	"context"
	"encoding/hex"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger at Debug level.
// Useful for development when you want to see wire traffic in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{}
	if event.ExchangeID != "" {
		attrs = append(attrs, slog.String("exchange_id", event.ExchangeID))
	}
	if event.Device != "" {
		attrs = append(attrs, slog.String("device", event.Device))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.String("direction", event.Direction.String()),
			slog.Int("frame_size", event.Frame.Size),
			slog.String("frame", hex.EncodeToString(event.Frame.Data)),
		)
		if event.Frame.Truncated {
			attrs = append(attrs, slog.Bool("truncated", true))
		}
	case event.Discovery != nil:
		if event.Discovery.Target != "" {
			attrs = append(attrs, slog.String("target", event.Discovery.Target))
		}
		if event.Discovery.Payload != "" {
			attrs = append(attrs, slog.String("payload", event.Discovery.Payload))
		}
		if event.Discovery.Model != "" {
			attrs = append(attrs, slog.String("model", event.Discovery.Model))
		}
		if event.Discovery.Skipped {
			attrs = append(attrs, slog.Bool("skipped", true))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("op", event.Error.Op),
			slog.String("error", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
