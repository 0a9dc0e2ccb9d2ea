package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"booking-system/internal/events"
	"booking-system/internal/services"
	"booking-system/pkg/eventbus"
)

// NotificationListener переводит события шины в вызовы приёмника
// уведомлений. Работает асинхронно относительно транзакций движка.
type NotificationListener struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotificationListener(
	notificationService services.NotificationServiceInterface,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationService: notificationService,
		logger:              logger,
	}
}

// Register подписывает слушателя на события жизненного цикла заявок.
func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.RequestConfirmedName, l.handleRequestEvent)
	bus.Subscribe(events.RequestOverdueName, l.handleRequestEvent)
	bus.Subscribe(events.RequestClosedName, l.handleRequestEvent)
	bus.Subscribe(events.RequestCancelledName, l.handleRequestEvent)
}

func (l *NotificationListener) handleRequestEvent(ctx context.Context, event eventbus.Event) error {
	payload, ok := event.(events.RequestEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	var err error
	switch payload.EventName {
	case events.RequestConfirmedName:
		err = l.notificationService.SendRequestConfirmed(
			payload.RequesterID, payload.RequestID, payload.KindName, payload.Quantity)
	case events.RequestOverdueName:
		err = l.notificationService.SendRequestOverdue(
			payload.RequesterID, payload.RequestID, payload.KindName)
	default:
		err = l.notificationService.SendRequestStatusChanged(
			payload.RequesterID, payload.RequestID, payload.Status)
	}

	if err != nil {
		l.logger.Error("не удалось доставить уведомление",
			zap.String("event", payload.EventName),
			zap.Uint64("requestID", payload.RequestID),
			zap.Error(err),
		)
	}
	return err
}
