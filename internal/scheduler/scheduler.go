package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"booking-system/internal/services"
)

// Scheduler - фоновый процесс сверки. Периодически прогоняет два прохода
// движка: просрочку выданных заявок и активацию дожидавшихся своего дня.
// Работает как независимый писатель наравне с HTTP-обработчиками;
// вся защита от гонок - в транзакциях самого движка.
type Scheduler struct {
	booking  services.BookingServiceInterface
	interval time.Duration
	logger   *zap.Logger
}

func New(booking services.BookingServiceInterface, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		booking:  booking,
		interval: interval,
		logger:   logger,
	}
}

// Run крутит цикл сверки до отмены контекста. Запускать в отдельной горутине.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("процесс сверки запущен", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("процесс сверки остановлен")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один полный проход сверки. Вынесен отдельно,
// чтобы проход можно было дёрнуть вручную и из тестов.
func (s *Scheduler) RunOnce(ctx context.Context) {
	overdue, err := s.booking.MarkOverdueScan(ctx)
	if err != nil {
		s.logger.Error("проход сверки просрочки завершился ошибкой", zap.Error(err))
	} else if overdue > 0 {
		s.logger.Info("заявки помечены просроченными", zap.Int("count", overdue))
	}

	activated, err := s.booking.ActivateQueuedScan(ctx)
	if err != nil {
		s.logger.Error("проход активации очереди завершился ошибкой", zap.Error(err))
	} else if activated > 0 {
		s.logger.Info("заявки переведены в очередь допуска", zap.Int("count", activated))
	}
}
