package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/events"
	"booking-system/pkg/clock"
	"booking-system/pkg/config"
	"booking-system/pkg/constants"
	"booking-system/pkg/contextkeys"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/eventbus"
	"booking-system/pkg/types"
	"booking-system/pkg/utils"
)

type bookingFixture struct {
	service  BookingServiceInterface
	store    *bookingStore
	clock    *clock.Manual
	recorder *eventRecorder

	memberID uint64
	adminID  uint64
	shiftID  uint64
}

// Фиксированная точка отсчёта: 1 мая 2024, 10:00.
var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	store := newBookingStore()
	manual := clock.NewManual(testNow)
	bus := eventbus.New(zap.NewNop())
	recorder := &eventRecorder{}
	recorder.subscribeAll(bus)

	cfg := config.BookingConfig{MaxEquipmentQuantity: 10, AdminIdentityTTL: time.Minute}
	service := NewBookingService(
		fakeTxManager{},
		&fakeRequestRepo{store: store},
		&fakeInstanceRepo{store: store},
		&fakeKindRepo{store: store},
		&fakeShiftRepo{store: store},
		&fakeUserRepo{store: store},
		bus, manual, cfg, zap.NewNop(),
	)

	return &bookingFixture{
		service:  service,
		store:    store,
		clock:    manual,
		recorder: recorder,
		memberID: store.addUser("Иванов Иван", false),
		adminID:  store.addUser("Админ", true),
		// Смена заканчивается в 18:00.
		shiftID: store.addShift("Дневная", 18, 0),
	}
}

func (f *bookingFixture) memberCtx() context.Context {
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, int(f.memberID))
	return context.WithValue(ctx, contextkeys.IsAdminKey, false)
}

func (f *bookingFixture) adminCtx() context.Context {
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, int(f.adminID))
	return context.WithValue(ctx, contextkeys.IsAdminKey, true)
}

func (f *bookingFixture) createEquipmentRequest(t *testing.T, kindID uint64, quantity int, startDate time.Time) uint64 {
	t.Helper()
	id, err := f.service.CreateRequest(f.memberCtx(), constants.VariantEquipment, dto.CreateRequestDTO{
		KindID:             kindID,
		ShiftID:            f.shiftID,
		Quantity:           quantity,
		Description:        "для занятия",
		PreferredStartDate: startDate.Format(utils.DateLayout),
		PreferredEndDate:   startDate.Format(utils.DateLayout),
	})
	require.NoError(t, err)
	return id
}

func TestCreateRequest_TodayIsOpen_FutureIsQueued(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	f.store.addInstance(kindID, "NB-001")

	todayID := f.createEquipmentRequest(t, kindID, 1, testNow)
	assert.Equal(t, constants.StatusOpen, f.store.requestStatus(todayID))

	futureID := f.createEquipmentRequest(t, kindID, 1, testNow.AddDate(0, 0, 3))
	assert.Equal(t, constants.StatusQueued, f.store.requestStatus(futureID))
}

func TestCreateRequest_Validation(t *testing.T) {
	f := newBookingFixture(t)
	equipmentKind := f.store.addKind("Ноутбук", constants.VariantEquipment)
	roomKind := f.store.addKind("Сектор А", constants.VariantRoom)

	makeDTO := func(kindID uint64, quantity int, start string) dto.CreateRequestDTO {
		return dto.CreateRequestDTO{
			KindID: kindID, ShiftID: f.shiftID, Quantity: quantity,
			Description:        "тест",
			PreferredStartDate: start,
			PreferredEndDate:   start,
		}
	}
	today := testNow.Format(utils.DateLayout)

	t.Run("потолок помещений", func(t *testing.T) {
		_, err := f.service.CreateRequest(f.memberCtx(), constants.VariantRoom,
			makeDTO(roomKind, constants.MaxRoomQuantity+1, today))
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("потолок оборудования", func(t *testing.T) {
		_, err := f.service.CreateRequest(f.memberCtx(), constants.VariantEquipment,
			makeDTO(equipmentKind, 11, today))
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("дата начала в прошлом", func(t *testing.T) {
		yesterday := testNow.AddDate(0, 0, -1).Format(utils.DateLayout)
		_, err := f.service.CreateRequest(f.memberCtx(), constants.VariantEquipment,
			makeDTO(equipmentKind, 1, yesterday))
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("вид не того варианта", func(t *testing.T) {
		_, err := f.service.CreateRequest(f.memberCtx(), constants.VariantEquipment,
			makeDTO(roomKind, 1, today))
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("несуществующий вид", func(t *testing.T) {
		_, err := f.service.CreateRequest(f.memberCtx(), constants.VariantEquipment,
			makeDTO(999, 1, today))
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("пустой каталог видов", func(t *testing.T) {
		empty := newBookingFixture(t)
		_, err := empty.service.CreateRequest(empty.memberCtx(), constants.VariantEquipment,
			dto.CreateRequestDTO{
				KindID: 999, ShiftID: empty.shiftID, Quantity: 1,
				Description:        "тест",
				PreferredStartDate: today,
				PreferredEndDate:   today,
			})
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("смены не настроены", func(t *testing.T) {
		f.store.mu.Lock()
		f.store.shifts[f.shiftID].Active = false
		f.store.mu.Unlock()
		defer func() {
			f.store.mu.Lock()
			f.store.shifts[f.shiftID].Active = true
			f.store.mu.Unlock()
		}()

		_, err := f.service.CreateRequest(f.memberCtx(), constants.VariantEquipment,
			makeDTO(equipmentKind, 1, today))
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

// Два подтверждения исчерпывают пул, создание третьей заявки проходит,
// но её подтверждение упирается в конфликт.
func TestConfirm_AdmissionControl(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	firstInstance := f.store.addInstance(kindID, "NB-001")
	secondInstance := f.store.addInstance(kindID, "NB-002")

	firstRequest := f.createEquipmentRequest(t, kindID, 1, testNow)
	secondRequest := f.createEquipmentRequest(t, kindID, 1, testNow)

	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), firstRequest,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{firstInstance}}))
	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), secondRequest,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{secondInstance}}))

	assert.Equal(t, constants.StatusConfirmed, f.store.requestStatus(firstRequest))
	assert.Equal(t, constants.InstanceStatusConfirmed, f.store.instanceStatus(firstInstance))

	instanceRepo := &fakeInstanceRepo{store: f.store}
	available, err := instanceRepo.CountAvailableByKind(context.Background(), kindID)
	require.NoError(t, err)
	assert.Zero(t, available, "после двух подтверждений свободных единиц не осталось")

	// Третья заявка создаётся без отказа по количеству.
	thirdRequest := f.createEquipmentRequest(t, kindID, 1, testNow)
	assert.Equal(t, constants.StatusOpen, f.store.requestStatus(thirdRequest))

	// Но подтвердить её нечем: обе единицы уже заняты.
	err = f.service.ConfirmRequest(f.adminCtx(), thirdRequest,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{firstInstance}})
	var conflictErr *apperrors.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, constants.StatusOpen, f.store.requestStatus(thirdRequest))
}

func TestConfirm_Guards(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	otherKind := f.store.addKind("Проектор", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")
	secondInstance := f.store.addInstance(kindID, "NB-002")
	foreignInstance := f.store.addInstance(otherKind, "PR-001")

	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)

	t.Run("число единиц не совпадает с количеством", func(t *testing.T) {
		err := f.service.ConfirmRequest(f.adminCtx(), requestID,
			dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID, secondInstance}})
		var conflictErr *apperrors.ConflictError
		require.ErrorAs(t, err, &conflictErr)
	})

	t.Run("единица другого вида", func(t *testing.T) {
		err := f.service.ConfirmRequest(f.adminCtx(), requestID,
			dto.ConfirmRequestDTO{InstanceIDs: []uint64{foreignInstance}})
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("несуществующая единица", func(t *testing.T) {
		err := f.service.ConfirmRequest(f.adminCtx(), requestID,
			dto.ConfirmRequestDTO{InstanceIDs: []uint64{777}})
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

// Просевшая между чтением и подтверждением единица даёт конфликт.
func TestConfirm_StaleInstance(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")

	firstRequest := f.createEquipmentRequest(t, kindID, 1, testNow)
	secondRequest := f.createEquipmentRequest(t, kindID, 1, testNow)

	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), firstRequest,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))

	err := f.service.ConfirmRequest(f.adminCtx(), secondRequest,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}})
	var conflictErr *apperrors.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, constants.StatusOpen, f.store.requestStatus(secondRequest))
}

func TestDeliver_PastReturnDateRejected(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")
	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))

	yesterday := testNow.AddDate(0, 0, -1).Format(utils.DateLayout)
	err := f.service.DeliverRequest(f.adminCtx(), requestID, dto.DeliverRequestDTO{ReturnByDate: yesterday})
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, constants.StatusConfirmed, f.store.requestStatus(requestID))
}

// due_at = дата возврата + конец смены.
func TestDeliver_DueAtCombinesShiftEnd(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")
	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))

	require.NoError(t, f.service.DeliverRequest(f.adminCtx(), requestID,
		dto.DeliverRequestDTO{ReturnByDate: "2024-05-01"}))

	f.store.mu.Lock()
	request := f.store.requests[requestID]
	f.store.mu.Unlock()

	require.True(t, request.DueAt.Valid)
	assert.Equal(t, time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC), request.DueAt.Time)
	assert.Equal(t, constants.StatusInUse, request.Status)
	assert.Equal(t, constants.InstanceStatusInUse, f.store.instanceStatus(instanceID))
}

func TestReturn_ClosesAndFreesInstances(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")
	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))
	require.NoError(t, f.service.DeliverRequest(f.adminCtx(), requestID,
		dto.DeliverRequestDTO{ReturnByDate: "2024-05-02"}))

	require.NoError(t, f.service.ReturnRequest(f.adminCtx(), requestID))

	assert.Equal(t, constants.StatusClosed, f.store.requestStatus(requestID))
	assert.Equal(t, constants.InstanceStatusOpen, f.store.instanceStatus(instanceID))
}

// Отмена подтверждённой заявки возвращает единицы в пул; повторная
// отмена упирается в терминальное состояние.
func TestCancel_ConfirmedReleasesInstances(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")
	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))

	instanceRepo := &fakeInstanceRepo{store: f.store}
	available, _ := instanceRepo.CountAvailableByKind(context.Background(), kindID)
	require.Zero(t, available)

	require.NoError(t, f.service.CancelRequest(f.memberCtx(), requestID))

	assert.Equal(t, constants.StatusCancelled, f.store.requestStatus(requestID))
	assert.Equal(t, constants.InstanceStatusOpen, f.store.instanceStatus(instanceID))
	available, _ = instanceRepo.CountAvailableByKind(context.Background(), kindID)
	assert.Equal(t, 1, available, "после отмены доступность восстановилась")

	err := f.service.CancelRequest(f.memberCtx(), requestID)
	var conflictErr *apperrors.ConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestCancel_Permissions(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)

	strangerID := f.store.addUser("Посторонний", false)
	strangerCtx := context.WithValue(context.Background(), contextkeys.UserIDKey, int(strangerID))
	strangerCtx = context.WithValue(strangerCtx, contextkeys.IsAdminKey, false)

	require.ErrorIs(t, f.service.CancelRequest(strangerCtx, requestID), apperrors.ErrForbidden)

	// Админ отменяет чужую заявку без препятствий.
	require.NoError(t, f.service.CancelRequest(f.adminCtx(), requestID))
}

func TestCancel_InUseRejected(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")
	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))
	require.NoError(t, f.service.DeliverRequest(f.adminCtx(), requestID,
		dto.DeliverRequestDTO{ReturnByDate: "2024-05-02"}))

	err := f.service.CancelRequest(f.memberCtx(), requestID)
	var conflictErr *apperrors.ConflictError
	require.ErrorAs(t, err, &conflictErr)
}

// Из CLOSED и CANCELLED не выводит ни один переход.
func TestTerminalStateClosure(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")
	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
	require.NoError(t, f.service.CancelRequest(f.memberCtx(), requestID))

	var conflictErr *apperrors.ConflictError

	require.ErrorAs(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}), &conflictErr)
	require.ErrorAs(t, f.service.DeliverRequest(f.adminCtx(), requestID,
		dto.DeliverRequestDTO{ReturnByDate: "2024-05-02"}), &conflictErr)
	require.ErrorAs(t, f.service.ReturnRequest(f.adminCtx(), requestID), &conflictErr)
	require.ErrorAs(t, f.service.CancelRequest(f.memberCtx(), requestID), &conflictErr)

	assert.Equal(t, constants.StatusCancelled, f.store.requestStatus(requestID))
}

// Проход сверки помечает просрочку один раз: повторный запуск не меняет
// состояния и не шлёт второе уведомление.
func TestMarkOverdueScan_Idempotent(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")
	requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
	require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
		dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))
	require.NoError(t, f.service.DeliverRequest(f.adminCtx(), requestID,
		dto.DeliverRequestDTO{ReturnByDate: "2024-05-01"}))

	// До срока возврата проход ничего не находит.
	marked, err := f.service.MarkOverdueScan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, marked)

	// Переводим часы за 18:00.
	f.clock.Set(time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC))

	marked, err = f.service.MarkOverdueScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	assert.Equal(t, constants.StatusOverdue, f.store.requestStatus(requestID))
	assert.Equal(t, constants.InstanceStatusOverdue, f.store.instanceStatus(instanceID))

	require.Eventually(t, func() bool {
		return f.recorder.countByName(events.RequestOverdueName) == 1
	}, time.Second, 10*time.Millisecond, "должно уйти ровно одно уведомление о просрочке")

	// Повторный проход - no-op.
	marked, err = f.service.MarkOverdueScan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.Equal(t, constants.StatusOverdue, f.store.requestStatus(requestID))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.recorder.countByName(events.RequestOverdueName))

	// Возврат разрешён и из просрочки.
	require.NoError(t, f.service.ReturnRequest(f.adminCtx(), requestID))
	assert.Equal(t, constants.StatusClosed, f.store.requestStatus(requestID))
	assert.Equal(t, constants.InstanceStatusOpen, f.store.instanceStatus(instanceID))
}

func TestActivateQueuedScan(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)

	todayID := f.createEquipmentRequest(t, kindID, 1, testNow)
	tomorrowID := f.createEquipmentRequest(t, kindID, 1, testNow.AddDate(0, 0, 1))
	require.Equal(t, constants.StatusOpen, f.store.requestStatus(todayID))
	require.Equal(t, constants.StatusQueued, f.store.requestStatus(tomorrowID))

	activated, err := f.service.ActivateQueuedScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, activated)
	assert.Equal(t, constants.StatusQueued, f.store.requestStatus(todayID))

	// Заявка на завтра не трогается: её день ещё не наступил.
	assert.Equal(t, constants.StatusQueued, f.store.requestStatus(tomorrowID))

	// Повторный проход никого не находит.
	activated, err = f.service.ActivateQueuedScan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, activated)
}

func TestSoftDelete(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)
	instanceID := f.store.addInstance(kindID, "NB-001")

	t.Run("подтверждённая освобождает единицы", func(t *testing.T) {
		requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
		require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
			dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))

		require.NoError(t, f.service.SoftDeleteRequest(f.adminCtx(), requestID))
		assert.Equal(t, constants.InstanceStatusOpen, f.store.instanceStatus(instanceID))

		_, err := f.service.FindRequest(f.adminCtx(), requestID)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("выданную удалить нельзя", func(t *testing.T) {
		requestID := f.createEquipmentRequest(t, kindID, 1, testNow)
		require.NoError(t, f.service.ConfirmRequest(f.adminCtx(), requestID,
			dto.ConfirmRequestDTO{InstanceIDs: []uint64{instanceID}}))
		require.NoError(t, f.service.DeliverRequest(f.adminCtx(), requestID,
			dto.DeliverRequestDTO{ReturnByDate: "2024-05-02"}))

		err := f.service.SoftDeleteRequest(f.adminCtx(), requestID)
		var conflictErr *apperrors.ConflictError
		require.ErrorAs(t, err, &conflictErr)
	})
}

func TestGetRequests_OwnerScoping(t *testing.T) {
	f := newBookingFixture(t)
	kindID := f.store.addKind("Ноутбук", constants.VariantEquipment)

	ownRequest := f.createEquipmentRequest(t, kindID, 1, testNow)

	otherID := f.store.addUser("Другой пользователь", false)
	otherCtx := context.WithValue(context.Background(), contextkeys.UserIDKey, int(otherID))
	otherCtx = context.WithValue(otherCtx, contextkeys.IsAdminKey, false)
	_, err := f.service.CreateRequest(otherCtx, constants.VariantEquipment, dto.CreateRequestDTO{
		KindID: kindID, ShiftID: f.shiftID, Quantity: 1, Description: "чужая",
		PreferredStartDate: testNow.Format(utils.DateLayout),
		PreferredEndDate:   testNow.Format(utils.DateLayout),
	})
	require.NoError(t, err)

	mine, total, err := f.service.GetRequests(f.memberCtx(), types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, ownRequest, mine[0].ID)

	// Чужую заявку по ID обычный пользователь тоже не видит.
	_, err = f.service.FindRequest(otherCtx, ownRequest)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	all, total, err := f.service.GetRequests(f.adminCtx(), types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	assert.Len(t, all, 2)
}
