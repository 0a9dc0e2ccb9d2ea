package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/services"
	"booking-system/pkg/constants"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/utils"
)

type BookingController struct {
	bookingService services.BookingServiceInterface
	logger         *zap.Logger
}

func NewBookingController(service services.BookingServiceInterface, logger *zap.Logger) *BookingController {
	return &BookingController{
		bookingService: service,
		logger:         logger,
	}
}

func (c *BookingController) GetRequests(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.bookingService.GetRequests(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetRequests: ошибка при получении списка заявок", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список заявок успешно получен", http.StatusOK, total)
}

func (c *BookingController) FindRequest(ctx echo.Context) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.bookingService.FindRequest(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindRequest: ошибка при поиске заявки", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Заявка успешно найдена", http.StatusOK)
}

// CreateEquipmentRequest - заявка на оборудование.
func (c *BookingController) CreateEquipmentRequest(ctx echo.Context) error {
	return c.createRequest(ctx, constants.VariantEquipment)
}

// CreateRoomRequest - заявка на помещение.
func (c *BookingController) CreateRoomRequest(ctx echo.Context) error {
	return c.createRequest(ctx, constants.VariantRoom)
}

func (c *BookingController) createRequest(ctx echo.Context, variant string) error {
	var payload dto.CreateRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Error("createRequest: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := c.bookingService.CreateRequest(ctx.Request().Context(), variant, payload)
	if err != nil {
		c.logger.Error("createRequest: ошибка при создании заявки",
			zap.String("variant", variant), zap.Any("payload", payload), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Заявка успешно создана", http.StatusCreated)
}

func (c *BookingController) ConfirmRequest(ctx echo.Context) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.ConfirmRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.bookingService.ConfirmRequest(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("ConfirmRequest: ошибка подтверждения", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Заявка подтверждена", http.StatusOK)
}

func (c *BookingController) DeliverRequest(ctx echo.Context) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.DeliverRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.bookingService.DeliverRequest(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("DeliverRequest: ошибка выдачи", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Ресурсы выданы", http.StatusOK)
}

func (c *BookingController) ReturnRequest(ctx echo.Context) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.bookingService.ReturnRequest(ctx.Request().Context(), id); err != nil {
		c.logger.Error("ReturnRequest: ошибка возврата", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Возврат оформлен, заявка закрыта", http.StatusOK)
}

func (c *BookingController) CancelRequest(ctx echo.Context) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.bookingService.CancelRequest(ctx.Request().Context(), id); err != nil {
		c.logger.Error("CancelRequest: ошибка отмены", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Заявка отменена", http.StatusOK)
}

func (c *BookingController) DeleteRequest(ctx echo.Context) error {
	id, err := c.parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.bookingService.SoftDeleteRequest(ctx.Request().Context(), id); err != nil {
		c.logger.Error("DeleteRequest: ошибка удаления", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Заявка удалена", http.StatusOK)
}

func (c *BookingController) parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID заявки", err,
			map[string]interface{}{"param": ctx.Param("id")})
	}
	return id, nil
}
