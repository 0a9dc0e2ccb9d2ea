package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"booking-system/internal/entities"
	"booking-system/internal/events"
	"booking-system/pkg/constants"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/eventbus"
	"booking-system/pkg/types"
)

// bookingStore - общее состояние фейковых репозиториев в памяти.
// Фейки реализуют те же интерфейсы, что и реальные репозитории,
// но без базы: движок тестируется на чистой логике переходов.
type bookingStore struct {
	mu          sync.Mutex
	requests    map[uint64]*entities.Request
	instances   map[uint64]*entities.ResourceInstance
	assignments map[uint64][]uint64 // requestID -> instanceIDs
	kinds       map[uint64]*entities.ResourceKind
	shifts      map[uint64]*entities.Shift
	users       map[uint64]*entities.User
	nextID      uint64
}

func newBookingStore() *bookingStore {
	return &bookingStore{
		requests:    make(map[uint64]*entities.Request),
		instances:   make(map[uint64]*entities.ResourceInstance),
		assignments: make(map[uint64][]uint64),
		kinds:       make(map[uint64]*entities.ResourceKind),
		shifts:      make(map[uint64]*entities.Shift),
		users:       make(map[uint64]*entities.User),
		nextID:      1,
	}
}

func (s *bookingStore) id() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *bookingStore) addKind(name, variant string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.kinds[id] = &entities.ResourceKind{ID: id, Name: name, Variant: variant, Active: true}
	return id
}

func (s *bookingStore) addInstance(kindID uint64, label string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.instances[id] = &entities.ResourceInstance{
		ID: id, Label: label, KindID: kindID,
		Status: constants.InstanceStatusOpen, Active: true,
	}
	return id
}

func (s *bookingStore) addShift(name string, endHour, endMinute int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.shifts[id] = &entities.Shift{
		ID: id, Name: name, Active: true,
		StartTime: time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC),
		EndTime:   time.Date(0, 1, 1, endHour, endMinute, 0, 0, time.UTC),
	}
	return id
}

func (s *bookingStore) addUser(fio string, isAdmin bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.users[id] = &entities.User{ID: id, Fio: fio, IsAdmin: isAdmin, Active: true}
	return id
}

func (s *bookingStore) instanceStatus(id uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instances[id].Status
}

func (s *bookingStore) requestStatus(id uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id].Status
}

// --- фейковый менеджер транзакций: просто вызывает fn ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// --- фейковый репозиторий заявок ---

type fakeRequestRepo struct{ store *bookingStore }

func (r *fakeRequestRepo) CreateInTx(ctx context.Context, tx pgx.Tx, request entities.Request) (uint64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request.ID = r.store.id()
	request.Active = true
	copied := request
	r.store.requests[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakeRequestRepo) find(id uint64) (*entities.Request, error) {
	request, ok := r.store.requests[id]
	if !ok || !request.Active {
		return nil, apperrors.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *fakeRequestRepo) FindRequest(ctx context.Context, id uint64) (*entities.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, err := r.find(id)
	if err != nil {
		return nil, err
	}
	for _, instanceID := range r.store.assignments[id] {
		request.Instances = append(request.Instances, *r.store.instances[instanceID])
	}
	return request, nil
}

func (r *fakeRequestRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.find(id)
}

func (r *fakeRequestRepo) GetRequests(ctx context.Context, filter types.Filter, requesterID uint64) ([]entities.Request, uint64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.Request
	for _, request := range r.store.requests {
		if !request.Active {
			continue
		}
		if requesterID != 0 && request.RequesterID != requesterID {
			continue
		}
		result = append(result, *request)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, uint64(len(result)), nil
}

func (r *fakeRequestRepo) ListByStatusStartingOn(ctx context.Context, status string, day time.Time) ([]entities.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.Request
	for _, request := range r.store.requests {
		if request.Active && request.Status == status &&
			request.PreferredStartDate.Year() == day.Year() &&
			request.PreferredStartDate.YearDay() == day.YearDay() {
			result = append(result, *request)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeRequestRepo) ListInUseDueBefore(ctx context.Context, deadline time.Time) ([]entities.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.Request
	for _, request := range r.store.requests {
		if request.Active && request.Status == constants.StatusInUse &&
			request.DueAt.Valid && request.DueAt.Time.Before(deadline) {
			result = append(result, *request)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeRequestRepo) SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, set map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, ok := r.store.requests[id]
	if !ok || !request.Active {
		return apperrors.ErrNotFound
	}
	request.Status = status
	for column, value := range set {
		moment, ok := value.(time.Time)
		if !ok {
			continue
		}
		switch column {
		case "confirmed_at":
			request.ConfirmedAt.SetValid(moment)
		case "delivered_at":
			request.DeliveredAt.SetValid(moment)
		case "returned_at":
			request.ReturnedAt.SetValid(moment)
		case "cancelled_at":
			request.CancelledAt.SetValid(moment)
		case "due_at":
			request.DueAt.SetValid(moment)
		}
	}
	return nil
}

func (r *fakeRequestRepo) AssignInstancesInTx(ctx context.Context, tx pgx.Tx, requestID uint64, instanceIDs []uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.assignments[requestID] = append(r.store.assignments[requestID], instanceIDs...)
	return nil
}

func (r *fakeRequestRepo) SoftDeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	request, ok := r.store.requests[id]
	if !ok || !request.Active {
		return apperrors.ErrNotFound
	}
	request.Active = false
	return nil
}

func (r *fakeRequestRepo) ListInstances(ctx context.Context, requestID uint64) ([]entities.ResourceInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.ResourceInstance
	for _, instanceID := range r.store.assignments[requestID] {
		result = append(result, *r.store.instances[instanceID])
	}
	return result, nil
}

// --- фейковый репозиторий единиц ---

type fakeInstanceRepo struct{ store *bookingStore }

func (r *fakeInstanceRepo) GetInstances(ctx context.Context, kindID uint64, status string) ([]entities.ResourceInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.ResourceInstance
	for _, instance := range r.store.instances {
		if !instance.Active {
			continue
		}
		if kindID != 0 && instance.KindID != kindID {
			continue
		}
		if status != "" && instance.Status != status {
			continue
		}
		result = append(result, *instance)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeInstanceRepo) FindInstance(ctx context.Context, id uint64) (*entities.ResourceInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	instance, ok := r.store.instances[id]
	if !ok || !instance.Active {
		return nil, apperrors.ErrNotFound
	}
	copied := *instance
	return &copied, nil
}

func (r *fakeInstanceRepo) CountAvailableByKind(ctx context.Context, kindID uint64) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, instance := range r.store.instances {
		if instance.Active && instance.KindID == kindID && instance.Status == constants.InstanceStatusOpen {
			count++
		}
	}
	return count, nil
}

func (r *fakeInstanceRepo) ListAvailableByKind(ctx context.Context, kindID uint64) ([]entities.ResourceInstance, error) {
	return r.GetInstances(ctx, kindID, constants.InstanceStatusOpen)
}

func (r *fakeInstanceRepo) FindByIDsForUpdateInTx(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.ResourceInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.ResourceInstance
	for _, id := range ids {
		if instance, ok := r.store.instances[id]; ok {
			result = append(result, *instance)
		}
	}
	return result, nil
}

func (r *fakeInstanceRepo) ListByRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, requestID uint64) ([]entities.ResourceInstance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.ResourceInstance
	for _, instanceID := range r.store.assignments[requestID] {
		result = append(result, *r.store.instances[instanceID])
	}
	return result, nil
}

func (r *fakeInstanceRepo) SetStatusInTx(ctx context.Context, tx pgx.Tx, ids []uint64, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range ids {
		instance, ok := r.store.instances[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		instance.Status = status
		instance.UnavailabilityReason.Valid = false
	}
	return nil
}

func (r *fakeInstanceRepo) CreateInstance(ctx context.Context, instance entities.ResourceInstance) (uint64, error) {
	return r.store.addInstance(instance.KindID, instance.Label), nil
}

func (r *fakeInstanceRepo) EnableInstance(ctx context.Context, id uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	instance := r.store.instances[id]
	if instance.Status != constants.InstanceStatusDisabled {
		return apperrors.NewConflictError("единицу можно включить только из статуса DISABLED")
	}
	instance.Status = constants.InstanceStatusOpen
	instance.UnavailabilityReason.Valid = false
	return nil
}

func (r *fakeInstanceRepo) DisableInstance(ctx context.Context, id uint64, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	instance := r.store.instances[id]
	if instance.Status != constants.InstanceStatusOpen {
		return apperrors.NewConflictError("выключить можно только свободную (OPEN) единицу")
	}
	instance.Status = constants.InstanceStatusDisabled
	instance.UnavailabilityReason.SetValid(reason)
	return nil
}

func (r *fakeInstanceRepo) DeactivateInstance(ctx context.Context, id uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	instance := r.store.instances[id]
	if instance.Status != constants.InstanceStatusOpen && instance.Status != constants.InstanceStatusDisabled {
		return apperrors.NewConflictError("нельзя удалить единицу, закреплённую за живой заявкой")
	}
	instance.Active = false
	return nil
}

// --- фейковые справочники ---

type fakeKindRepo struct{ store *bookingStore }

func (r *fakeKindRepo) GetKinds(ctx context.Context, variant string) ([]entities.ResourceKind, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.ResourceKind
	for _, kind := range r.store.kinds {
		if kind.Active && (variant == "" || kind.Variant == variant) {
			result = append(result, *kind)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeKindRepo) FindKind(ctx context.Context, id uint64) (*entities.ResourceKind, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kind, ok := r.store.kinds[id]
	if !ok || !kind.Active {
		return nil, apperrors.ErrNotFound
	}
	copied := *kind
	return &copied, nil
}

func (r *fakeKindRepo) CountActiveByVariant(ctx context.Context, variant string) (int, error) {
	kinds, _ := r.GetKinds(ctx, variant)
	return len(kinds), nil
}

func (r *fakeKindRepo) CreateKind(ctx context.Context, kind entities.ResourceKind) (uint64, error) {
	return r.store.addKind(kind.Name, kind.Variant), nil
}

func (r *fakeKindRepo) UpdateKind(ctx context.Context, id uint64, name string, active *bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kind, ok := r.store.kinds[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if name != "" {
		kind.Name = name
	}
	if active != nil {
		kind.Active = *active
	}
	return nil
}

type fakeShiftRepo struct{ store *bookingStore }

func (r *fakeShiftRepo) GetShifts(ctx context.Context) ([]entities.Shift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []entities.Shift
	for _, shift := range r.store.shifts {
		if shift.Active {
			result = append(result, *shift)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeShiftRepo) FindShift(ctx context.Context, id uint64) (*entities.Shift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	shift, ok := r.store.shifts[id]
	if !ok || !shift.Active {
		return nil, apperrors.ErrNotFound
	}
	copied := *shift
	return &copied, nil
}

func (r *fakeShiftRepo) CountActive(ctx context.Context) (int, error) {
	shifts, _ := r.GetShifts(ctx)
	return len(shifts), nil
}

func (r *fakeShiftRepo) CreateShift(ctx context.Context, shift entities.Shift) (uint64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id := r.store.id()
	shift.ID = id
	shift.Active = true
	copied := shift
	r.store.shifts[id] = &copied
	return id, nil
}

func (r *fakeShiftRepo) DeactivateShift(ctx context.Context, id uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	shift, ok := r.store.shifts[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	shift.Active = false
	return nil
}

type fakeUserRepo struct{ store *bookingStore }

func (r *fakeUserRepo) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindUserByLogin(ctx context.Context, login string) (*entities.User, error) {
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *entities.User) (uint64, error) {
	return r.store.addUser(user.Fio, user.IsAdmin), nil
}

func (r *fakeUserRepo) GetUsers(ctx context.Context) ([]entities.User, error) {
	return nil, nil
}

// --- регистратор событий шины ---

type eventRecorder struct {
	mu       sync.Mutex
	recorded []events.RequestEvent
}

func (rec *eventRecorder) subscribeAll(bus *eventbus.Bus) {
	names := []string{
		events.RequestOpenedName, events.RequestConfirmedName, events.RequestDeliveredName,
		events.RequestOverdueName, events.RequestClosedName, events.RequestCancelledName,
	}
	for _, name := range names {
		bus.Subscribe(name, func(ctx context.Context, event eventbus.Event) error {
			payload, ok := event.(events.RequestEvent)
			if !ok {
				return nil
			}
			rec.mu.Lock()
			rec.recorded = append(rec.recorded, payload)
			rec.mu.Unlock()
			return nil
		})
	}
}

func (rec *eventRecorder) countByName(name string) int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	count := 0
	for _, event := range rec.recorded {
		if event.EventName == name {
			count++
		}
	}
	return count
}
