package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/entities"
	"booking-system/internal/repositories"
	apperrors "booking-system/pkg/errors"
)

const shiftTimeLayout = "15:04"

type ShiftServiceInterface interface {
	GetShifts(ctx context.Context) ([]dto.ShiftDTO, error)
	FindShift(ctx context.Context, id uint64) (*dto.ShiftDTO, error)
	CreateShift(ctx context.Context, payload dto.CreateShiftDTO) (uint64, error)
	DeleteShift(ctx context.Context, id uint64) error
}

type ShiftService struct {
	shiftRepo repositories.ShiftRepositoryInterface
	logger    *zap.Logger
}

func NewShiftService(shiftRepo repositories.ShiftRepositoryInterface, logger *zap.Logger) ShiftServiceInterface {
	return &ShiftService{shiftRepo: shiftRepo, logger: logger}
}

func (s *ShiftService) GetShifts(ctx context.Context) ([]dto.ShiftDTO, error) {
	shifts, err := s.shiftRepo.GetShifts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ShiftDTO, 0, len(shifts))
	for _, shift := range shifts {
		result = append(result, toShiftDTO(shift))
	}
	return result, nil
}

func (s *ShiftService) FindShift(ctx context.Context, id uint64) (*dto.ShiftDTO, error) {
	shift, err := s.shiftRepo.FindShift(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toShiftDTO(*shift)
	return &result, nil
}

func (s *ShiftService) CreateShift(ctx context.Context, payload dto.CreateShiftDTO) (uint64, error) {
	startTime, err := time.Parse(shiftTimeLayout, payload.StartTime)
	if err != nil {
		return 0, apperrors.NewValidationError("неверный формат времени начала смены")
	}
	endTime, err := time.Parse(shiftTimeLayout, payload.EndTime)
	if err != nil {
		return 0, apperrors.NewValidationError("неверный формат времени конца смены")
	}
	if !endTime.After(startTime) {
		return 0, apperrors.NewValidationError("конец смены должен быть позже начала")
	}

	return s.shiftRepo.CreateShift(ctx, entities.Shift{
		Name:      payload.Name,
		StartTime: startTime,
		EndTime:   endTime,
	})
}

func (s *ShiftService) DeleteShift(ctx context.Context, id uint64) error {
	if _, err := s.shiftRepo.FindShift(ctx, id); err != nil {
		return err
	}
	return s.shiftRepo.DeactivateShift(ctx, id)
}

func toShiftDTO(shift entities.Shift) dto.ShiftDTO {
	return dto.ShiftDTO{
		ID:        shift.ID,
		Name:      shift.Name,
		StartTime: shift.StartTime.Format(shiftTimeLayout),
		EndTime:   shift.EndTime.Format(shiftTimeLayout),
		Active:    shift.Active,
	}
}
