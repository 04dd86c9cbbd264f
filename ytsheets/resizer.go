package ytsheets

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/api/sheets/v4"
)

// Resizer - высота строк и ширина колонки с картинкой
type Resizer struct {
	sheets      *sheets.Service
	rowHeight   int64
	columnWidth int64
	column      int64
	log         zerolog.Logger
}

// NewResizer - column считается с нуля
func NewResizer(sh *sheets.Service, rowHeight, columnWidth, column int64, log zerolog.Logger) *Resizer {
	return &Resizer{sheets: sh, rowHeight: rowHeight, columnWidth: columnWidth, column: column, log: log}
}

// SheetID - числовой id листа по названию; ok=false, если листа нет
func (r *Resizer) SheetID(ctx context.Context, spreadsheetID, sheetName string) (id int64, ok bool, err error) {
	response, err := r.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return 0, false, apiError("sheets spreadsheets.get", err)
	}
	for _, sheet := range response.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return sheet.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}

// Resize - строки startRow..endRow включительно и одна колонка.
// Косметика: ни одна ошибка не прерывает синхронизацию, только лог.
func (r *Resizer) Resize(ctx context.Context, spreadsheetID, sheetName string, startRow, endRow int64) {
	sheetID, ok, err := r.SheetID(ctx, spreadsheetID, sheetName)
	if err != nil {
		r.log.Warn().Err(err).Str("sheet", sheetName).Msg("resize skipped")
		return
	}
	if !ok {
		r.log.Warn().Str("sheet", sheetName).Msg("sheet not found, resize skipped")
		return
	}
	var request = &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			dimensionRequest(sheetID, "ROWS", startRow, endRow+1, r.rowHeight),
			dimensionRequest(sheetID, "COLUMNS", r.column, r.column+1, r.columnWidth),
		},
	}
	if _, err := r.sheets.Spreadsheets.BatchUpdate(spreadsheetID, request).Context(ctx).Do(); err != nil {
		r.log.Warn().Err(apiError("sheets spreadsheets.batchUpdate", err)).Msg("resize failed")
		return
	}
	r.log.Info().Int64("sheet_id", sheetID).Int64("start_row", startRow).Int64("end_row", endRow).Msg("sheet resized")
}

// dimensionRequest - полуинтервал [start, end); нулевые id и индексы отправляются явно
func dimensionRequest(sheetID int64, dimension string, start, end, pixels int64) *sheets.Request {
	return &sheets.Request{
		UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
			Range: &sheets.DimensionRange{
				SheetId:         sheetID,
				Dimension:       dimension,
				StartIndex:      start,
				EndIndex:        end,
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
			Properties: &sheets.DimensionProperties{PixelSize: pixels},
			Fields:     "pixelSize",
		},
	}
}
