package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender is the outbound notification seam. Delivery is owned by an external
// service; everything here is fire-and-forget and callers must never let a
// send failure roll back business state.
type Sender interface {
	Send(ctx context.Context, to, template string, payload map[string]interface{}) error
}

type logSender struct {
	logger zerolog.Logger
}

// NewLogSender returns a Sender that records the notification instead of
// delivering it. It stands in for the mail service in development and tests.
func NewLogSender(logger zerolog.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, to, template string, payload map[string]interface{}) error {
	s.logger.Info().
		Str("to", to).
		Str("template", template).
		Fields(payload).
		Msg("notification sent")
	return nil
}
