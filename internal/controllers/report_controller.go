package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"booking-system/internal/entities"
	"booking-system/internal/services"
	"booking-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) GetReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter, format := c.parseFilters(ctx)
	c.logger.Debug("Запрос на отчёт с фильтрами", zap.Any("filters", filter), zap.String("format", format))

	if format == "xlsx" {
		data, _, err := c.reportService.GetReportForExcel(reqCtx, filter)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		return c.respondWithXLSX(ctx, data)
	}

	data, total, err := c.reportService.GetReportDTOs(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, data, "Отчёт успешно сформирован", http.StatusOK, total)
}

func (c *ReportController) parseFilters(ctx echo.Context) (entities.ReportFilter, string) {
	stdFilter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	filter := entities.ReportFilter{
		Limit:  uint64(stdFilter.Limit),
		Offset: uint64(stdFilter.Offset),
	}
	format := strings.ToLower(ctx.QueryParam("format"))

	if format == "xlsx" {
		// Для экспорта выгружаем всё.
		filter.Limit = 0
		filter.Offset = 0
	}

	if df := ctx.QueryParam("date_from"); df != "" {
		if t, err := time.Parse(utils.DateLayout, df); err == nil {
			filter.DateFrom = &t
		}
	}
	if dt := ctx.QueryParam("date_to"); dt != "" {
		if t, err := time.Parse(utils.DateLayout, dt); err == nil {
			end := t.AddDate(0, 0, 1)
			filter.DateTo = &end
		}
	}
	if variant := strings.ToUpper(ctx.QueryParam("variant")); variant != "" {
		filter.Variant = variant
	}
	if statuses := ctx.QueryParam("statuses"); statuses != "" {
		for _, status := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, strings.ToUpper(strings.TrimSpace(status)))
		}
	}

	return filter, format
}

var reportHeaders = []string{
	"ID заявки", "Вариант", "Статус", "Заявитель", "Вид ресурса", "Смена",
	"Количество", "Открыта", "Срок возврата", "Возвращена", "Единиц закреплено",
}

func rowToSlice(item entities.ReportItem) []interface{} {
	dateFmt := "02.01.2006 15:04"
	var dueAt, returnedAt string
	if item.DueAt.Valid {
		dueAt = item.DueAt.Time.Format(dateFmt)
	}
	if item.ReturnedAt.Valid {
		returnedAt = item.ReturnedAt.Time.Format(dateFmt)
	}

	return []interface{}{
		item.RequestID, item.Variant, item.Status, item.RequesterFio, item.KindName,
		item.ShiftName, item.Quantity, item.OpenedAt.Format(dateFmt), dueAt, returnedAt,
		item.InstanceCount,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, data []entities.ReportItem) error {
	f := excelize.NewFile()
	sheet := "Отчёт по заявкам"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "K1", style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := rowToSlice(item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "D", "E", 25)
	f.SetColWidth(sheet, "H", "J", 18)

	fileName := fmt.Sprintf("booking_report_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
