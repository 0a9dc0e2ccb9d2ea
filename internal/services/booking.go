package services

import (
	"context"
	"errors"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/entities"
	"booking-system/internal/events"
	"booking-system/internal/repositories"
	"booking-system/pkg/clock"
	"booking-system/pkg/config"
	"booking-system/pkg/constants"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/eventbus"
	"booking-system/pkg/types"
	"booking-system/pkg/utils"
)

type BookingServiceInterface interface {
	GetRequests(ctx context.Context, filter types.Filter) ([]dto.RequestDTO, uint64, error)
	FindRequest(ctx context.Context, id uint64) (*dto.RequestDTO, error)
	CreateRequest(ctx context.Context, variant string, payload dto.CreateRequestDTO) (uint64, error)
	ConfirmRequest(ctx context.Context, id uint64, payload dto.ConfirmRequestDTO) error
	DeliverRequest(ctx context.Context, id uint64, payload dto.DeliverRequestDTO) error
	ReturnRequest(ctx context.Context, id uint64) error
	CancelRequest(ctx context.Context, id uint64) error
	SoftDeleteRequest(ctx context.Context, id uint64) error

	// Проходы фоновой сверки. Каждый кандидат обрабатывается в своей
	// транзакции с перечиткой guard-условия, ошибка по одному кандидату
	// не прерывает проход.
	MarkOverdueScan(ctx context.Context) (int, error)
	ActivateQueuedScan(ctx context.Context) (int, error)
}

type BookingService struct {
	txManager    repositories.TxManagerInterface
	requestRepo  repositories.RequestRepositoryInterface
	instanceRepo repositories.ResourceInstanceRepositoryInterface
	kindRepo     repositories.ResourceKindRepositoryInterface
	shiftRepo    repositories.ShiftRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	bus          *eventbus.Bus
	clock        clock.Clock
	cfg          config.BookingConfig
	logger       *zap.Logger
}

func NewBookingService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	instanceRepo repositories.ResourceInstanceRepositoryInterface,
	kindRepo repositories.ResourceKindRepositoryInterface,
	shiftRepo repositories.ShiftRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	bus *eventbus.Bus,
	clk clock.Clock,
	cfg config.BookingConfig,
	logger *zap.Logger,
) BookingServiceInterface {
	return &BookingService{
		txManager:    txManager,
		requestRepo:  requestRepo,
		instanceRepo: instanceRepo,
		kindRepo:     kindRepo,
		shiftRepo:    shiftRepo,
		userRepo:     userRepo,
		bus:          bus,
		clock:        clk,
		cfg:          cfg,
		logger:       logger,
	}
}

// CreateRequest заводит новую заявку. Заявка на сегодняшний день рождается
// в OPEN, на будущую дату - в QUEUED. По количеству создание не отказывает:
// дефицит единиц всплывёт конфликтом на этапе подтверждения.
func (s *BookingService) CreateRequest(ctx context.Context, variant string, payload dto.CreateRequestDTO) (uint64, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return 0, err
	}

	kind, err := s.kindRepo.FindKind(ctx, payload.KindID)
	if err != nil {
		// Пустой справочник - проблема данных, а не "не тот id".
		if errors.Is(err, apperrors.ErrNotFound) {
			if count, countErr := s.kindRepo.CountActiveByVariant(ctx, variant); countErr == nil && count == 0 {
				return 0, apperrors.NewValidationError("в каталоге нет ни одного вида ресурса варианта %s", variant)
			}
		}
		return 0, err
	}
	if kind.Variant != variant {
		return 0, apperrors.NewValidationError("вид ресурса %q не относится к варианту %s", kind.Name, variant)
	}

	shift, err := s.shiftRepo.FindShift(ctx, payload.ShiftID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if count, countErr := s.shiftRepo.CountActive(ctx); countErr == nil && count == 0 {
				return 0, apperrors.NewValidationError("в справочнике не настроено ни одной смены")
			}
		}
		return 0, err
	}

	if err := s.validateQuantity(variant, payload.Quantity); err != nil {
		return 0, err
	}

	now := s.clock.Now()
	startDate, endDate, err := s.parsePreferredDates(payload, now)
	if err != nil {
		return 0, err
	}

	status := constants.StatusQueued
	if utils.SameDay(startDate, now) {
		status = constants.StatusOpen
	}

	request := entities.Request{
		Variant:            variant,
		RequesterID:        uint64(userID),
		KindID:             kind.ID,
		ShiftID:            shift.ID,
		Status:             status,
		Quantity:           payload.Quantity,
		Description:        payload.Description,
		PreferredStartDate: startDate,
		PreferredEndDate:   endDate,
		OpenedAt:           now,
	}

	var newID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		newID, err = s.requestRepo.CreateInTx(ctx, tx, request)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.bus.Publish(ctx, events.RequestEvent{
		EventName:   events.RequestOpenedName,
		RequestID:   newID,
		RequesterID: uint64(userID),
		Variant:     variant,
		Status:      status,
		KindName:    kind.Name,
		Quantity:    payload.Quantity,
	})
	return newID, nil
}

func (s *BookingService) validateQuantity(variant string, quantity int) error {
	if quantity < 1 {
		return apperrors.NewValidationError("количество должно быть не меньше 1")
	}
	switch variant {
	case constants.VariantRoom:
		if quantity > constants.MaxRoomQuantity {
			return apperrors.NewValidationError(
				"в одной заявке можно запросить не более %d помещений", constants.MaxRoomQuantity)
		}
	case constants.VariantEquipment:
		if quantity > s.cfg.MaxEquipmentQuantity {
			return apperrors.NewValidationError(
				"в одной заявке можно запросить не более %d единиц оборудования", s.cfg.MaxEquipmentQuantity)
		}
	default:
		return apperrors.NewValidationError("неизвестный вариант заявки: %s", variant)
	}
	return nil
}

func (s *BookingService) parsePreferredDates(payload dto.CreateRequestDTO, now time.Time) (time.Time, time.Time, error) {
	startDate, err := time.ParseInLocation(utils.DateLayout, payload.PreferredStartDate, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("неверный формат даты начала")
	}
	endDate, err := time.ParseInLocation(utils.DateLayout, payload.PreferredEndDate, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("неверный формат даты окончания")
	}
	today := utils.TruncateToDay(now)
	if startDate.Before(today) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("дата начала не может быть в прошлом")
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("дата окончания раньше даты начала")
	}
	return startDate, endDate, nil
}

// ConfirmRequest закрепляет за заявкой конкретные единицы. Вся проверка
// делается по перечитанному под блокировкой состоянию: между чтением
// админом списка свободных единиц и подтверждением могла пройти другая
// транзакция.
func (s *BookingService) ConfirmRequest(ctx context.Context, id uint64, payload dto.ConfirmRequestDTO) error {
	var event events.RequestEvent
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if constants.IsTerminalStatus(request.Status) {
			return apperrors.NewConflictError("заявка уже завершена (%s)", request.Status)
		}
		if request.Status != constants.StatusOpen && request.Status != constants.StatusQueued {
			return apperrors.NewConflictError("подтвердить можно только заявку в OPEN или QUEUED, текущий статус: %s", request.Status)
		}
		if len(payload.InstanceIDs) != request.Quantity {
			return apperrors.NewConflictError(
				"число единиц (%d) не совпадает с количеством в заявке (%d)",
				len(payload.InstanceIDs), request.Quantity)
		}

		instances, err := s.instanceRepo.FindByIDsForUpdateInTx(ctx, tx, payload.InstanceIDs)
		if err != nil {
			return err
		}
		if len(instances) != len(payload.InstanceIDs) {
			return apperrors.ErrNotFound
		}
		for _, instance := range instances {
			if instance.KindID != request.KindID {
				return apperrors.NewValidationError(
					"единица %q относится к другому виду ресурса", instance.Label)
			}
			if !instance.Active || instance.Status != constants.InstanceStatusOpen {
				return apperrors.NewConflictError(
					"единица %q уже недоступна (%s)", instance.Label, instance.Status)
			}
		}

		now := s.clock.Now()
		if err := s.requestRepo.SetStatusInTx(ctx, tx, id, constants.StatusConfirmed,
			map[string]interface{}{"confirmed_at": now}); err != nil {
			return err
		}
		if err := s.requestRepo.AssignInstancesInTx(ctx, tx, id, payload.InstanceIDs); err != nil {
			return err
		}
		if err := s.instanceRepo.SetStatusInTx(ctx, tx, payload.InstanceIDs, constants.InstanceStatusConfirmed); err != nil {
			return err
		}

		kind, err := s.kindRepo.FindKind(ctx, request.KindID)
		if err != nil {
			return err
		}
		event = events.RequestEvent{
			EventName:   events.RequestConfirmedName,
			RequestID:   id,
			RequesterID: request.RequesterID,
			Variant:     request.Variant,
			Status:      constants.StatusConfirmed,
			KindName:    kind.Name,
			Quantity:    request.Quantity,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// DeliverRequest фиксирует выдачу: заявка и её единицы уходят в IN_USE,
// срок возврата складывается из даты возврата и конца смены.
func (s *BookingService) DeliverRequest(ctx context.Context, id uint64, payload dto.DeliverRequestDTO) error {
	now := s.clock.Now()
	returnBy, err := time.ParseInLocation(utils.DateLayout, payload.ReturnByDate, now.Location())
	if err != nil {
		return apperrors.NewValidationError("неверный формат даты возврата")
	}
	if returnBy.Before(utils.TruncateToDay(now)) {
		return apperrors.NewValidationError("дата возврата не может быть в прошлом")
	}

	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if constants.IsTerminalStatus(request.Status) {
			return apperrors.NewConflictError("заявка уже завершена (%s)", request.Status)
		}
		if request.Status != constants.StatusConfirmed {
			return apperrors.NewConflictError("выдать можно только подтверждённую заявку, текущий статус: %s", request.Status)
		}

		shift, err := s.shiftRepo.FindShift(ctx, request.ShiftID)
		if err != nil {
			return err
		}
		dueAt := utils.CombineDateAndTime(returnBy, shift.EndTime)

		if err := s.requestRepo.SetStatusInTx(ctx, tx, id, constants.StatusInUse,
			map[string]interface{}{"delivered_at": now, "due_at": dueAt}); err != nil {
			return err
		}
		return s.setAssignedInstancesStatusInTx(ctx, tx, id, constants.InstanceStatusInUse)
	})
}

// ReturnRequest закрывает заявку: единицы возвращаются в пул (OPEN),
// заявка становится CLOSED. Разрешён и из OVERDUE.
func (s *BookingService) ReturnRequest(ctx context.Context, id uint64) error {
	var event events.RequestEvent
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if constants.IsTerminalStatus(request.Status) {
			return apperrors.NewConflictError("заявка уже завершена (%s)", request.Status)
		}
		if request.Status != constants.StatusInUse && request.Status != constants.StatusOverdue {
			return apperrors.NewConflictError("вернуть можно только выданную заявку, текущий статус: %s", request.Status)
		}

		if err := s.requestRepo.SetStatusInTx(ctx, tx, id, constants.StatusClosed,
			map[string]interface{}{"returned_at": s.clock.Now()}); err != nil {
			return err
		}
		if err := s.setAssignedInstancesStatusInTx(ctx, tx, id, constants.InstanceStatusOpen); err != nil {
			return err
		}

		event = events.RequestEvent{
			EventName:   events.RequestClosedName,
			RequestID:   id,
			RequesterID: request.RequesterID,
			Variant:     request.Variant,
			Status:      constants.StatusClosed,
			Quantity:    request.Quantity,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// CancelRequest отменяет ещё не выданную заявку. Владелец может отменить
// только свою, админ - любую. Закреплённые единицы освобождаются.
func (s *BookingService) CancelRequest(ctx context.Context, id uint64) error {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}
	isAdmin := utils.GetIsAdminFromCtx(ctx)

	var event events.RequestEvent
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if !isAdmin && request.RequesterID != uint64(userID) {
			return apperrors.ErrForbidden
		}
		if constants.IsTerminalStatus(request.Status) {
			return apperrors.NewConflictError("заявка уже завершена (%s)", request.Status)
		}
		if request.Status == constants.StatusInUse || request.Status == constants.StatusOverdue {
			return apperrors.NewConflictError("выданную заявку нельзя отменить, сначала оформите возврат")
		}

		if err := s.requestRepo.SetStatusInTx(ctx, tx, id, constants.StatusCancelled,
			map[string]interface{}{"cancelled_at": s.clock.Now()}); err != nil {
			return err
		}
		if request.Status == constants.StatusConfirmed {
			if err := s.setAssignedInstancesStatusInTx(ctx, tx, id, constants.InstanceStatusOpen); err != nil {
				return err
			}
		}

		event = events.RequestEvent{
			EventName:   events.RequestCancelledName,
			RequestID:   id,
			RequesterID: request.RequesterID,
			Variant:     request.Variant,
			Status:      constants.StatusCancelled,
			Quantity:    request.Quantity,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, event)
	return nil
}

// SoftDeleteRequest архивирует заявку. Выданную (IN_USE/OVERDUE) заявку
// архивировать нельзя. Подтверждённая при архивировании освобождает
// свои единицы - страховка от потерянных ресурсов.
func (s *BookingService) SoftDeleteRequest(ctx context.Context, id uint64) error {
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if request.Status == constants.StatusInUse || request.Status == constants.StatusOverdue {
			return apperrors.NewConflictError("нельзя удалить заявку с выданными ресурсами")
		}

		if request.Status == constants.StatusConfirmed {
			if err := s.setAssignedInstancesStatusInTx(ctx, tx, id, constants.InstanceStatusOpen); err != nil {
				return err
			}
		}
		if err := s.requestRepo.SetStatusInTx(ctx, tx, id, constants.StatusClosed, nil); err != nil {
			return err
		}
		return s.requestRepo.SoftDeleteInTx(ctx, tx, id)
	})
}

// MarkOverdueScan находит выданные заявки с истёкшим сроком и переводит
// их в OVERDUE. Возвращает число успешно переведённых заявок.
func (s *BookingService) MarkOverdueScan(ctx context.Context) (int, error) {
	now := s.clock.Now()
	candidates, err := s.requestRepo.ListInUseDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range candidates {
		event, err := s.markOverdueOne(ctx, candidate.ID, now)
		if err != nil {
			// Кандидата могла обогнать человеческая транзакция
			// (возврат, отмена). Пропускаем и идём дальше.
			s.logger.Warn("кандидат пропущен при сверке просрочки",
				zap.Uint64("requestID", candidate.ID), zap.Error(err))
			continue
		}
		s.bus.Publish(ctx, event)
		marked++
	}
	return marked, nil
}

func (s *BookingService) markOverdueOne(ctx context.Context, id uint64, now time.Time) (events.RequestEvent, error) {
	var event events.RequestEvent
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		request, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		// Перечитка guard-условия под блокировкой.
		if request.Status != constants.StatusInUse {
			return apperrors.NewConflictError("заявка уже не в IN_USE: %s", request.Status)
		}
		if !request.DueAt.Valid || !now.After(request.DueAt.Time) {
			return apperrors.NewConflictError("срок возврата ещё не истёк")
		}

		if err := s.requestRepo.SetStatusInTx(ctx, tx, id, constants.StatusOverdue, nil); err != nil {
			return err
		}
		if err := s.setAssignedInstancesStatusInTx(ctx, tx, id, constants.InstanceStatusOverdue); err != nil {
			return err
		}

		kindName := ""
		if kind, err := s.kindRepo.FindKind(ctx, request.KindID); err == nil {
			kindName = kind.Name
		}
		event = events.RequestEvent{
			EventName:   events.RequestOverdueName,
			RequestID:   id,
			RequesterID: request.RequesterID,
			Variant:     request.Variant,
			Status:      constants.StatusOverdue,
			KindName:    kindName,
			Quantity:    request.Quantity,
		}
		return nil
	})
	return event, err
}

// ActivateQueuedScan переводит дожидающиеся заявки в OPEN, чей день
// наступил, в состояние ожидания допуска (QUEUED).
func (s *BookingService) ActivateQueuedScan(ctx context.Context) (int, error) {
	today := utils.TruncateToDay(s.clock.Now())
	candidates, err := s.requestRepo.ListByStatusStartingOn(ctx, constants.StatusOpen, today)
	if err != nil {
		return 0, err
	}

	activated := 0
	for _, candidate := range candidates {
		err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			request, err := s.requestRepo.FindForUpdateInTx(ctx, tx, candidate.ID)
			if err != nil {
				return err
			}
			if request.Status != constants.StatusOpen {
				return apperrors.NewConflictError("заявка уже не в OPEN: %s", request.Status)
			}
			if !utils.SameDay(request.PreferredStartDate, today) {
				return apperrors.NewConflictError("день начала ещё не наступил")
			}
			return s.requestRepo.SetStatusInTx(ctx, tx, request.ID, constants.StatusQueued, nil)
		})
		if err != nil {
			s.logger.Warn("кандидат пропущен при активации очереди",
				zap.Uint64("requestID", candidate.ID), zap.Error(err))
			continue
		}
		activated++
	}
	return activated, nil
}

// setAssignedInstancesStatusInTx переводит все закреплённые за заявкой
// единицы в указанный статус в рамках той же транзакции.
func (s *BookingService) setAssignedInstancesStatusInTx(ctx context.Context, tx pgx.Tx, requestID uint64, status string) error {
	instances, err := s.instanceRepo.ListByRequestForUpdateInTx(ctx, tx, requestID)
	if err != nil {
		return err
	}
	ids := make([]uint64, 0, len(instances))
	for _, instance := range instances {
		ids = append(ids, instance.ID)
	}
	return s.instanceRepo.SetStatusInTx(ctx, tx, ids, status)
}

func (s *BookingService) GetRequests(ctx context.Context, filter types.Filter) ([]dto.RequestDTO, uint64, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}

	// Обычный пользователь видит только свои заявки.
	var requesterID uint64
	if !utils.GetIsAdminFromCtx(ctx) {
		requesterID = uint64(userID)
	}

	requests, total, err := s.requestRepo.GetRequests(ctx, filter, requesterID)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.RequestDTO, 0, len(requests))
	for _, request := range requests {
		item, err := s.toDTO(ctx, &request)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *item)
	}
	return result, total, nil
}

func (s *BookingService) FindRequest(ctx context.Context, id uint64) (*dto.RequestDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	request, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !utils.GetIsAdminFromCtx(ctx) && request.RequesterID != uint64(userID) {
		return nil, apperrors.ErrForbidden
	}
	return s.toDTO(ctx, request)
}

func (s *BookingService) toDTO(ctx context.Context, request *entities.Request) (*dto.RequestDTO, error) {
	result := dto.RequestDTO{
		ID:                 request.ID,
		Variant:            request.Variant,
		Status:             request.Status,
		Quantity:           request.Quantity,
		Description:        request.Description,
		PreferredStartDate: request.PreferredStartDate.Format(utils.DateLayout),
		PreferredEndDate:   request.PreferredEndDate.Format(utils.DateLayout),
		OpenedAt:           request.OpenedAt.Format(time.RFC3339),
		ConfirmedAt:        formatNullTime(request.ConfirmedAt),
		DeliveredAt:        formatNullTime(request.DeliveredAt),
		ReturnedAt:         formatNullTime(request.ReturnedAt),
		CancelledAt:        formatNullTime(request.CancelledAt),
		DueAt:              formatNullTime(request.DueAt),
	}

	if user, err := s.userRepo.FindUser(ctx, request.RequesterID); err == nil {
		result.Requester = dto.ShortUserDTO{ID: user.ID, Fio: user.Fio}
	}
	if kind, err := s.kindRepo.FindKind(ctx, request.KindID); err == nil {
		result.Kind = dto.ShortKindDTO{ID: kind.ID, Name: kind.Name, Variant: kind.Variant}
	}
	if shift, err := s.shiftRepo.FindShift(ctx, request.ShiftID); err == nil {
		result.Shift = dto.ShortShiftDTO{
			ID:      shift.ID,
			Name:    shift.Name,
			EndTime: shift.EndTime.Format("15:04"),
		}
	}
	for _, instance := range request.Instances {
		result.Instances = append(result.Instances, dto.ShortInstanceDTO{
			ID:     instance.ID,
			Label:  instance.Label,
			Status: instance.Status,
		})
	}
	return &result, nil
}

func formatNullTime(t null.Time) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(time.RFC3339)
}
