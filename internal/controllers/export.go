package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"okr-console/internal/dto"
	apperrors "okr-console/pkg/errors"
)

func wantsXLSX(ctx echo.Context) bool {
	return ctx.QueryParam("format") == "xlsx"
}

// respondWithXLSX выгружает видимую таблицу как есть: те же колонки, те же строки.
func respondWithXLSX(ctx echo.Context, sheet, filename string, view dto.TableViewDTO) error {
	if view.Prompt != "" || view.Loading {
		return apperrors.NewHttpError(http.StatusConflict, "Таблица ещё не готова к выгрузке", apperrors.ErrBadRequest, nil)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheet)

	headers := make([]interface{}, 0, len(view.Columns)+1)
	headers = append(headers, "№")
	for _, col := range view.Columns {
		headers = append(headers, col.Title)
	}
	f.SetSheetRow(sheet, "A1", &headers)

	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", last, style)

	for i, row := range view.Rows {
		cells := make([]interface{}, 0, len(view.Columns)+1)
		cells = append(cells, i+1)
		for _, col := range view.Columns {
			cells = append(cells, row.Cells[col.Key])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(sheet, cell, &cells)
	}

	if len(view.Columns) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(view.Columns) + 1)
		f.SetColWidth(sheet, "B", lastCol, 25)
	}

	name := fmt.Sprintf("%s_%s.xlsx", filename, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
