package services

import "go.uber.org/zap"

// NotificationServiceInterface - приёмник уведомлений жизненного цикла.
// Движок зовёт его через слушателя шины, а не напрямую, поэтому сбой
// доставки никогда не откатывает переход.
type NotificationServiceInterface interface {
	SendRequestConfirmed(userID uint64, requestID uint64, kindName string, quantity int) error
	SendRequestOverdue(userID uint64, requestID uint64, kindName string) error
	SendRequestStatusChanged(userID uint64, requestID uint64, status string) error
}

// mockNotificationService - реализация-заглушка, которая пишет в лог
// вместо реальной отправки сообщений. Идеально для тестирования.
type mockNotificationService struct {
	logger *zap.Logger
}

func NewMockNotificationService(logger *zap.Logger) NotificationServiceInterface {
	return &mockNotificationService{logger: logger}
}

func (s *mockNotificationService) SendRequestConfirmed(userID uint64, requestID uint64, kindName string, quantity int) error {
	s.logger.Info("!!! ИМИТАЦИЯ УВЕДОМЛЕНИЯ: заявка подтверждена !!!",
		zap.Uint64("userID", userID),
		zap.Uint64("requestID", requestID),
		zap.String("вид", kindName),
		zap.Int("количество", quantity),
	)
	return nil
}

func (s *mockNotificationService) SendRequestOverdue(userID uint64, requestID uint64, kindName string) error {
	s.logger.Info("!!! ИМИТАЦИЯ УВЕДОМЛЕНИЯ: срок возврата истёк !!!",
		zap.Uint64("userID", userID),
		zap.Uint64("requestID", requestID),
		zap.String("вид", kindName),
	)
	return nil
}

func (s *mockNotificationService) SendRequestStatusChanged(userID uint64, requestID uint64, status string) error {
	s.logger.Info("имитация уведомления о смене статуса",
		zap.Uint64("userID", userID),
		zap.Uint64("requestID", requestID),
		zap.String("status", status),
	)
	return nil
}
