package usecase

import (
	"context"
	"errors"
	"log/slog"

	"helpline-responder/internal/domain"
	"helpline-responder/internal/metrics"
)

// Gateway is the external Send API. messenger.Client satisfies it.
type Gateway interface {
	SendMessage(ctx context.Context, msg domain.OutboundMessage) (domain.SendResult, error)
}

// Sender is what routing and flows use to deliver one message.
type Sender interface {
	Send(ctx context.Context, msg domain.OutboundMessage) error
}

// Messenger is the only component that calls the Gateway. Each message gets
// exactly one attempt.
type Messenger struct {
	gateway Gateway
	logger  *slog.Logger
}

func NewMessenger(g Gateway, logger *slog.Logger) (*Messenger, error) {
	if g == nil {
		return nil, errors.New("usecase: gateway must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Messenger{gateway: g, logger: logger}, nil
}

// Send returns once the gateway has answered. A failure is logged here and
// returned as a GATEWAY_ERROR so sequenced flows can stop; callers with
// nothing to sequence ignore it.
func (m *Messenger) Send(ctx context.Context, msg domain.OutboundMessage) error {
	res, err := m.gateway.SendMessage(ctx, msg)
	if err != nil {
		metrics.OutboundSends.WithLabelValues("failed").Inc()
		m.logger.Error("failed calling send api", "recipient", msg.Recipient, "err", err)
		return NewError(ErrorGateway, "send_failed", err)
	}
	metrics.OutboundSends.WithLabelValues("ok").Inc()
	m.logger.Debug("send api accepted message",
		"recipient", res.RecipientID,
		"message_id", res.MessageID,
	)
	return nil
}
