package ytsheets

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetQuery = "mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false"

// SpreadsheetDescriptor - имя и id таблицы из Drive
type SpreadsheetDescriptor struct {
	ID   string
	Name string
}

// Locator - поиск таблицы по имени с созданием при отсутствии
type Locator struct {
	drive  *drive.Service
	sheets *sheets.Service
	tab    string // лист, создаваемый в новой таблице
	log    zerolog.Logger
}

// NewLocator - tab задаёт имя первого листа новой таблицы
func NewLocator(dr *drive.Service, sh *sheets.Service, tab string, log zerolog.Logger) *Locator {
	return &Locator{drive: dr, sheets: sh, tab: tab, log: log}
}

// List - все таблицы, видимые пользователю, в порядке выдачи Drive
func (l *Locator) List(ctx context.Context) ([]SpreadsheetDescriptor, error) {
	var files []SpreadsheetDescriptor
	var pageToken string
	for {
		var call = l.drive.Files.List().
			Q(spreadsheetQuery).
			Fields("nextPageToken", "files(id, name)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		response, err := call.Do()
		if err != nil {
			return nil, apiError("drive files.list", err)
		}
		for _, f := range response.Files {
			files = append(files, SpreadsheetDescriptor{ID: f.Id, Name: f.Name})
		}
		if pageToken = response.NextPageToken; pageToken == "" {
			return files, nil
		}
	}
}

// FindOrCreate - id первой таблицы с таким именем, иначе новая таблица
func (l *Locator) FindOrCreate(ctx context.Context, name string) (id string, created bool, err error) {
	files, err := l.List(ctx)
	if err != nil {
		return "", false, err
	}
	for _, f := range files {
		if f.Name == name {
			l.log.Info().Str("spreadsheet", name).Str("id", f.ID).Msg("spreadsheet found")
			return f.ID, false, nil
		}
	}
	var spreadsheet = &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: name},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: l.tab}},
		},
	}
	response, err := l.sheets.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", false, apiError("sheets spreadsheets.create", err)
	}
	l.log.Info().Str("spreadsheet", name).Str("id", response.SpreadsheetId).Msg("spreadsheet created")
	return response.SpreadsheetId, true, nil
}
