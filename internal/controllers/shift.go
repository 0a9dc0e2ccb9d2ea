package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/services"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/utils"
)

type ShiftController struct {
	shiftService services.ShiftServiceInterface
	logger       *zap.Logger
}

func NewShiftController(service services.ShiftServiceInterface, logger *zap.Logger) *ShiftController {
	return &ShiftController{
		shiftService: service,
		logger:       logger,
	}
}

func (c *ShiftController) GetShifts(ctx echo.Context) error {
	res, err := c.shiftService.GetShifts(ctx.Request().Context())
	if err != nil {
		c.logger.Error("GetShifts: ошибка при получении списка смен", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список смен успешно получен", http.StatusOK)
}

func (c *ShiftController) FindShift(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.shiftService.FindShift(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindShift: ошибка при поиске смены", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Смена успешно найдена", http.StatusOK)
}

func (c *ShiftController) CreateShift(ctx echo.Context) error {
	var payload dto.CreateShiftDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := c.shiftService.CreateShift(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("CreateShift: ошибка при создании смены", zap.Any("payload", payload), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Смена успешно создана", http.StatusCreated)
}

func (c *ShiftController) DeleteShift(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.shiftService.DeleteShift(ctx.Request().Context(), id); err != nil {
		c.logger.Error("DeleteShift: ошибка при удалении смены", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Смена удалена", http.StatusOK)
}
