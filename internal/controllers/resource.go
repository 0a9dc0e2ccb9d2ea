package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"booking-system/internal/dto"
	"booking-system/internal/services"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/utils"
)

type ResourceController struct {
	catalogService services.CatalogServiceInterface
	logger         *zap.Logger
}

func NewResourceController(service services.CatalogServiceInterface, logger *zap.Logger) *ResourceController {
	return &ResourceController{
		catalogService: service,
		logger:         logger,
	}
}

func (c *ResourceController) GetKinds(ctx echo.Context) error {
	variant := strings.ToUpper(ctx.QueryParam("variant"))

	res, err := c.catalogService.GetKinds(ctx.Request().Context(), variant)
	if err != nil {
		c.logger.Error("GetKinds: ошибка при получении видов ресурсов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список видов ресурсов успешно получен", http.StatusOK)
}

func (c *ResourceController) FindKind(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.catalogService.FindKind(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("FindKind: ошибка при поиске вида ресурса", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Вид ресурса успешно найден", http.StatusOK)
}

func (c *ResourceController) CreateKind(ctx echo.Context) error {
	var payload dto.CreateResourceKindDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := c.catalogService.CreateKind(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("CreateKind: ошибка при создании вида ресурса", zap.Any("payload", payload), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Вид ресурса успешно создан", http.StatusCreated)
}

func (c *ResourceController) UpdateKind(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateResourceKindDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.catalogService.UpdateKind(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("UpdateKind: ошибка при обновлении вида ресурса", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Вид ресурса успешно обновлён", http.StatusOK)
}

// GetAvailability - производная доступность вида: текущее число свободных единиц.
func (c *ResourceController) GetAvailability(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	count, err := c.catalogService.AvailableCount(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("GetAvailability: ошибка подсчёта доступности", zap.Uint64("kindID", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]int{"available_count": count}, "Доступность успешно получена", http.StatusOK)
}

func (c *ResourceController) ListAvailable(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.catalogService.ListAvailable(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("ListAvailable: ошибка при получении свободных единиц", zap.Uint64("kindID", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список свободных единиц успешно получен", http.StatusOK)
}

func (c *ResourceController) GetInstances(ctx echo.Context) error {
	var kindID uint64
	if raw := ctx.QueryParam("kind_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx,
				apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат kind_id", err, nil),
				c.logger)
		}
		kindID = parsed
	}
	status := strings.ToUpper(ctx.QueryParam("status"))

	res, err := c.catalogService.GetInstances(ctx.Request().Context(), kindID, status)
	if err != nil {
		c.logger.Error("GetInstances: ошибка при получении единиц", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Список единиц успешно получен", http.StatusOK)
}

func (c *ResourceController) CreateInstance(ctx echo.Context) error {
	var payload dto.CreateResourceInstanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := c.catalogService.CreateInstance(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("CreateInstance: ошибка при создании единицы", zap.Any("payload", payload), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Единица ресурса успешно создана", http.StatusCreated)
}

func (c *ResourceController) EnableInstance(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.catalogService.EnableInstance(ctx.Request().Context(), id); err != nil {
		c.logger.Error("EnableInstance: ошибка включения единицы", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Единица возвращена в оборот", http.StatusOK)
}

func (c *ResourceController) DisableInstance(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.DisableResourceInstanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil),
			c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.catalogService.DisableInstance(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("DisableInstance: ошибка выключения единицы", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Единица выведена из оборота", http.StatusOK)
}

func (c *ResourceController) DeleteInstance(ctx echo.Context) error {
	id, err := parseParamID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.catalogService.DeleteInstance(ctx.Request().Context(), id); err != nil {
		c.logger.Error("DeleteInstance: ошибка удаления единицы", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Единица ресурса удалена", http.StatusOK)
}

func parseParamID(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err,
			map[string]interface{}{"param": ctx.Param(name)})
	}
	return id, nil
}
