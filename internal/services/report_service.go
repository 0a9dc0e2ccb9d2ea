package services

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/entities"
	"booking-system/internal/repositories"
)

type ReportServiceInterface interface {
	GetReportForExcel(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error)
	GetReportDTOs(ctx context.Context, filter entities.ReportFilter) ([]dto.ReportItemDTO, uint64, error)
}

type reportService struct {
	reportRepo repositories.ReportRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &reportService{reportRepo: reportRepo, logger: logger}
}

func (s *reportService) GetReportForExcel(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error) {
	return s.reportRepo.GetReport(ctx, filter)
}

func (s *reportService) GetReportDTOs(ctx context.Context, filter entities.ReportFilter) ([]dto.ReportItemDTO, uint64, error) {
	items, total, err := s.reportRepo.GetReport(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	formatNullTime := func(t null.Time) string {
		if t.Valid {
			return t.Time.Format(time.RFC3339)
		}
		return ""
	}

	dtos := make([]dto.ReportItemDTO, len(items))
	for i, item := range items {
		dtos[i] = dto.ReportItemDTO{
			RequestID:    item.RequestID,
			Variant:      item.Variant,
			Status:       item.Status,
			RequesterFio: item.RequesterFio,
			KindName:     item.KindName,
			ShiftName:    item.ShiftName,
			Quantity:     item.Quantity,
			OpenedAt:     item.OpenedAt.Format(time.RFC3339),
			DueAt:        formatNullTime(item.DueAt),
			ReturnedAt:   formatNullTime(item.ReturnedAt),
		}
	}
	return dtos, total, nil
}
