package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/entities"
	"booking-system/internal/repositories"
	"booking-system/pkg/constants"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/utils"
)

// CatalogServiceInterface - каталог ресурсов: виды, единицы и производная
// доступность. Доступное количество никогда не хранится и не кешируется,
// выключение единицы видно в подсчёте мгновенно.
type CatalogServiceInterface interface {
	GetKinds(ctx context.Context, variant string) ([]dto.ResourceKindDTO, error)
	FindKind(ctx context.Context, id uint64) (*dto.ResourceKindDTO, error)
	CreateKind(ctx context.Context, payload dto.CreateResourceKindDTO) (uint64, error)
	UpdateKind(ctx context.Context, id uint64, payload dto.UpdateResourceKindDTO) error

	AvailableCount(ctx context.Context, kindID uint64) (int, error)
	ListAvailable(ctx context.Context, kindID uint64) ([]dto.ResourceInstanceDTO, error)

	GetInstances(ctx context.Context, kindID uint64, status string) ([]dto.ResourceInstanceDTO, error)
	CreateInstance(ctx context.Context, payload dto.CreateResourceInstanceDTO) (uint64, error)
	EnableInstance(ctx context.Context, id uint64) error
	DisableInstance(ctx context.Context, id uint64, payload dto.DisableResourceInstanceDTO) error
	DeleteInstance(ctx context.Context, id uint64) error
}

type CatalogService struct {
	kindRepo     repositories.ResourceKindRepositoryInterface
	instanceRepo repositories.ResourceInstanceRepositoryInterface
	logger       *zap.Logger
}

func NewCatalogService(
	kindRepo repositories.ResourceKindRepositoryInterface,
	instanceRepo repositories.ResourceInstanceRepositoryInterface,
	logger *zap.Logger,
) CatalogServiceInterface {
	return &CatalogService{
		kindRepo:     kindRepo,
		instanceRepo: instanceRepo,
		logger:       logger,
	}
}

func (s *CatalogService) GetKinds(ctx context.Context, variant string) ([]dto.ResourceKindDTO, error) {
	kinds, err := s.kindRepo.GetKinds(ctx, variant)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ResourceKindDTO, 0, len(kinds))
	for _, kind := range kinds {
		count, err := s.instanceRepo.CountAvailableByKind(ctx, kind.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, toKindDTO(kind, count))
	}
	return result, nil
}

func (s *CatalogService) FindKind(ctx context.Context, id uint64) (*dto.ResourceKindDTO, error) {
	kind, err := s.kindRepo.FindKind(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.instanceRepo.CountAvailableByKind(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toKindDTO(*kind, count)
	return &result, nil
}

func (s *CatalogService) CreateKind(ctx context.Context, payload dto.CreateResourceKindDTO) (uint64, error) {
	if payload.Variant != constants.VariantEquipment && payload.Variant != constants.VariantRoom {
		return 0, apperrors.NewValidationError("неизвестный вариант: %s", payload.Variant)
	}
	return s.kindRepo.CreateKind(ctx, entities.ResourceKind{
		Name:    payload.Name,
		Variant: payload.Variant,
	})
}

func (s *CatalogService) UpdateKind(ctx context.Context, id uint64, payload dto.UpdateResourceKindDTO) error {
	if _, err := s.kindRepo.FindKind(ctx, id); err != nil {
		return err
	}
	return s.kindRepo.UpdateKind(ctx, id, payload.Name, payload.Active)
}

func (s *CatalogService) AvailableCount(ctx context.Context, kindID uint64) (int, error) {
	if _, err := s.kindRepo.FindKind(ctx, kindID); err != nil {
		return 0, err
	}
	return s.instanceRepo.CountAvailableByKind(ctx, kindID)
}

func (s *CatalogService) ListAvailable(ctx context.Context, kindID uint64) ([]dto.ResourceInstanceDTO, error) {
	if _, err := s.kindRepo.FindKind(ctx, kindID); err != nil {
		return nil, err
	}
	return s.GetInstances(ctx, kindID, constants.InstanceStatusOpen)
}

func (s *CatalogService) GetInstances(ctx context.Context, kindID uint64, status string) ([]dto.ResourceInstanceDTO, error) {
	instances, err := s.instanceRepo.GetInstances(ctx, kindID, status)
	if err != nil {
		return nil, err
	}

	// Справочник видов для коротких карточек.
	kinds, err := s.kindRepo.GetKinds(ctx, "")
	if err != nil {
		return nil, err
	}
	kindByID := make(map[uint64]entities.ResourceKind, len(kinds))
	for _, kind := range kinds {
		kindByID[kind.ID] = kind
	}

	result := make([]dto.ResourceInstanceDTO, 0, len(instances))
	for _, instance := range instances {
		item := dto.ResourceInstanceDTO{
			ID:                   instance.ID,
			Label:                instance.Label,
			Status:               instance.Status,
			UnavailabilityReason: instance.UnavailabilityReason.String,
			Active:               instance.Active,
			CreatedAt:            instance.CreatedAt.Format(time.RFC3339),
		}
		if kind, ok := kindByID[instance.KindID]; ok {
			item.Kind = dto.ShortKindDTO{ID: kind.ID, Name: kind.Name, Variant: kind.Variant}
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *CatalogService) CreateInstance(ctx context.Context, payload dto.CreateResourceInstanceDTO) (uint64, error) {
	if _, err := s.kindRepo.FindKind(ctx, payload.KindID); err != nil {
		return 0, err
	}
	return s.instanceRepo.CreateInstance(ctx, entities.ResourceInstance{
		Label:  payload.Label,
		KindID: payload.KindID,
	})
}

func (s *CatalogService) EnableInstance(ctx context.Context, id uint64) error {
	if _, err := s.instanceRepo.FindInstance(ctx, id); err != nil {
		return err
	}
	return s.instanceRepo.EnableInstance(ctx, id)
}

func (s *CatalogService) DisableInstance(ctx context.Context, id uint64, payload dto.DisableResourceInstanceDTO) error {
	if _, err := s.instanceRepo.FindInstance(ctx, id); err != nil {
		return err
	}
	return s.instanceRepo.DisableInstance(ctx, id, payload.Reason)
}

func (s *CatalogService) DeleteInstance(ctx context.Context, id uint64) error {
	if _, err := s.instanceRepo.FindInstance(ctx, id); err != nil {
		return err
	}
	return s.instanceRepo.DeactivateInstance(ctx, id)
}

func toKindDTO(kind entities.ResourceKind, availableCount int) dto.ResourceKindDTO {
	return dto.ResourceKindDTO{
		ID:             kind.ID,
		Name:           kind.Name,
		Variant:        kind.Variant,
		Active:         kind.Active,
		AvailableCount: availableCount,
		CreatedAt:      kind.CreatedAt.Format(utils.DateLayout),
	}
}
