package ytsheets

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/api/sheets/v4"
)

// userEntered - значения как ввод пользователя, формулы =IMAGE вычисляются
const userEntered = "USER_ENTERED"

// Writer - перезапись диапазона таблицы
type Writer struct {
	sheets     *sheets.Service
	layout     Layout
	clearStale bool // очищать строки прошлых запусков ниже записанных
	log        zerolog.Logger
}

// NewWriter - запись начинается с layout.StartRange()
func NewWriter(sh *sheets.Service, layout Layout, clearStale bool, log zerolog.Logger) *Writer {
	return &Writer{sheets: sh, layout: layout, clearStale: clearStale, log: log}
}

// Write - заменить содержимое диапазона строками values.
// Хвост очищается только после успешной записи: при ошибке прежние данные остаются.
func (w *Writer) Write(ctx context.Context, spreadsheetID string, values [][]interface{}) error {
	var startRange = w.layout.StartRange()
	var body = &sheets.ValueRange{Values: values}
	response, err := w.sheets.Spreadsheets.Values.Update(spreadsheetID, startRange, body).
		ValueInputOption(userEntered).
		Context(ctx).
		Do()
	if err != nil {
		return &WriteError{SpreadsheetID: spreadsheetID, Range: startRange, Err: err}
	}
	w.log.Info().
		Str("spreadsheet", spreadsheetID).
		Str("range", response.UpdatedRange).
		Int64("rows", response.UpdatedRows).
		Msg("rows written")

	if !w.clearStale {
		return nil
	}
	var tail = w.layout.TailRange(len(values))
	if _, err := w.sheets.Spreadsheets.Values.Clear(spreadsheetID, tail, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return &WriteError{SpreadsheetID: spreadsheetID, Range: tail, Err: err}
	}
	w.log.Debug().Str("range", tail).Msg("stale rows cleared")
	return nil
}
