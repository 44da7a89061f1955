package engine

import (
	"context"

	"go.uber.org/zap"
)

// LogSink emits a structured log line for each lifecycle event.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the Sink interface. logger defaults to
// a no-op logger when nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("run_id", evt.RunID),
			zap.String("kind", string(evt.Kind)),
			zap.Time("ts", evt.TS),
		}
		if evt.Page.URI != nil {
			fields = append(fields, zap.String("uri", evt.Page.URI.String()))
		}
		if evt.Reason != "" {
			fields = append(fields, zap.String("reason", evt.Reason))
		}
		if evt.CrawledPage != nil {
			fields = append(fields,
				zap.Int("status_code", evt.CrawledPage.StatusCode),
				zap.Int("page_size_bytes", evt.CrawledPage.PageSizeInBytes),
			)
		}
		s.logger.Info("crawl event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
