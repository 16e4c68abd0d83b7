package mq

import (
	"context"
	"log/slog"

	"github.com/shaiso/railbot/internal/workflow"
)

// Bridge транслирует события workflow во внешнюю шину.
//
// Подписывается на Hub и публикует смены состояний и финальные
// исходы бронирований. Ошибки публикации логируются и не
// останавливают трансляцию: шина вторична по отношению к workflow.
type Bridge struct {
	pub    *Publisher
	hub    *workflow.Hub
	logger *slog.Logger
}

// NewBridge создаёт мост между hub и publisher.
func NewBridge(pub *Publisher, hub *workflow.Hub, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{pub: pub, hub: hub, logger: logger}
}

// Run читает события до отмены контекста или закрытия hub.
func (b *Bridge) Run(ctx context.Context) {
	events, unsubscribe := b.hub.Subscribe(256)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			b.forward(ctx, e)
		}
	}
}

func (b *Bridge) forward(ctx context.Context, e workflow.Event) {
	var err error

	switch e.Type {
	case workflow.EventStateChanged:
		err = b.pub.PublishStateChanged(ctx, StateChangedPayload{
			BookingID: e.BookingID,
			From:      e.Prev,
			To:        e.Curr,
			Action:    e.Action,
		})
	case workflow.EventFinished:
		err = b.pub.PublishBookingFinished(ctx, BookingFinishedPayload{
			BookingID: e.BookingID,
			State:     e.Curr,
			Error:     e.Message,
		})
	default:
		// Логи остаются локальными, в шину не уходят.
		return
	}

	if err != nil {
		b.logger.Warn("mq publish failed", "event", e.Type, "error", err)
	}
}
