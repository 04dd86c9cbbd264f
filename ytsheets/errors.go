package ytsheets

import (
	"errors"
	"fmt"
)

// Ошибки, по которым вызывающий код может принимать решения через errors.Is
var (
	// ErrConfig - отсутствует или некорректна обязательная настройка
	ErrConfig = errors.New("invalid configuration")
	// ErrChannelShape - ответ channels.list не содержит uploads-плейлиста
	ErrChannelShape = errors.New("channel response has no uploads playlist")
	// ErrNoChannelQuery - канал не задан и пользователь не ввёл запрос
	ErrNoChannelQuery = errors.New("no channel id configured and no channel query given")
)

// APIError - ошибка вызова удалённого API с именем операции
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// CollectError - сбор плейлиста прерван на странице Page
type CollectError struct {
	PlaylistID string
	Page       int
	Err        error
}

func (e *CollectError) Error() string {
	return fmt.Sprintf("collect playlist %s failed on page %d: %v", e.PlaylistID, e.Page, e.Err)
}

func (e *CollectError) Unwrap() error { return e.Err }

// WriteError - запись строк в таблицу не удалась
type WriteError struct {
	SpreadsheetID string
	Range         string
	Err           error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s to spreadsheet %s: %v", e.Range, e.SpreadsheetID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func apiError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Op: op, Err: err}
}
