package notifications

import (
	"context"
	"fmt"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
)

// Sender delivers one composed notification over a single channel. Real
// transports (SMTP, WhatsApp Business API) slot in behind this interface;
// delivery failures surface as errors and never reach order state.
type Sender interface {
	Send(ctx context.Context, notification models.Notification) error
}

// LogSender writes would-be deliveries to the log. It stands in for every
// channel until transport credentials exist.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds the logging stand-in sender.
func NewLogSender(logg *logger.Logger) (*LogSender, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LogSender{logg: logg}, nil
}

func (s *LogSender) Send(ctx context.Context, notification models.Notification) error {
	fields := map[string]any{
		"channel":    notification.Channel,
		"recipient":  notification.Recipient,
		"event_type": notification.EventType,
		"subject":    notification.Subject,
	}
	if notification.OrderID != nil {
		fields["order_id"] = notification.OrderID.String()
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "notification dispatched")
	return nil
}
