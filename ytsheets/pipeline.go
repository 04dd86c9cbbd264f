package ytsheets

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Report - итог запуска
type Report struct {
	ChannelID       string
	PlaylistID      string
	NoVideos        bool // канал без результатов, запись не выполнялась
	SpreadsheetID   string
	SpreadsheetName string
	Created         bool
	Rows            int
}

// Syncer - канал -> плейлист -> таблица -> запись -> размеры
type Syncer struct {
	cfg       *Config
	layout    Layout
	resolver  *ChannelResolver
	collector *Collector
	locator   *Locator
	writer    *Writer
	resizer   *Resizer
	prompt    Prompt
	store     *Store // nil - без журнала
	log       zerolog.Logger
}

// NewSyncer - все компоненты получают одну сессию.
// progress и store могут быть nil.
func NewSyncer(cfg *Config, session *Session, prompt Prompt, store *Store, progress io.Writer, log zerolog.Logger) *Syncer {
	var layout = cfg.Layout()
	return &Syncer{
		cfg:       cfg,
		layout:    layout,
		resolver:  NewChannelResolver(session.YouTube, prompt, log),
		collector: NewCollector(session.YouTube, cfg.PageSize, progress, log),
		locator:   NewLocator(session.Drive, session.Sheets, cfg.SheetTabName, log),
		writer:    NewWriter(session.Sheets, layout, cfg.ClearStaleRows, log),
		resizer:   NewResizer(session.Sheets, cfg.RowHeight, cfg.ColumnWidth, int64(layout.Column)+cfg.ImageColumn, log),
		prompt:    prompt,
		store:     store,
		log:       log,
	}
}

// Locator - для вывода списка таблиц
func (s *Syncer) Locator() *Locator {
	return s.locator
}

// Run - один полный проход. Пустой канал завершает запуск до работы с таблицами
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	var report = &Report{}
	channelID, err := s.resolver.ResolveChannelID(ctx, s.cfg.ChannelID, s.cfg.ChannelQuery)
	if err != nil {
		return nil, err
	}
	report.ChannelID = channelID

	playlistID, ok, err := s.resolver.UploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		report.NoVideos = true
		return report, nil
	}
	report.PlaylistID = playlistID

	records, err := s.collector.Collect(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		report.NoVideos = true
		return report, nil
	}
	var table = Table{Header: s.cfg.DataFields, Records: records}

	name, err := s.spreadsheetName(ctx)
	if err != nil {
		return nil, err
	}
	report.SpreadsheetName = name
	spreadsheetID, created, err := s.locator.FindOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}
	report.SpreadsheetID = spreadsheetID
	report.Created = created

	if err := s.writer.Write(ctx, spreadsheetID, table.Values()); err != nil {
		return nil, err
	}
	report.Rows = table.Len()

	// строки данных идут сразу под заголовком в sheet_start_position
	firstRow, lastRow := s.layout.DataRows(len(records))
	s.resizer.Resize(ctx, spreadsheetID, s.cfg.SheetTabName, firstRow, lastRow)
	s.journal(ctx, report)
	return report, nil
}

func (s *Syncer) spreadsheetName(ctx context.Context) (string, error) {
	if s.cfg.SpreadsheetName != "" {
		return s.cfg.SpreadsheetName, nil
	}
	if s.prompt == nil {
		return "", fmt.Errorf("%w: spreadsheet_name is required without a prompt", ErrConfig)
	}
	name, err := s.prompt(ctx, "file name: ")
	if err != nil {
		return "", fmt.Errorf("spreadsheet prompt: %w", err)
	}
	if name = strings.TrimSpace(name); name == "" {
		return "", fmt.Errorf("%w: empty spreadsheet name", ErrConfig)
	}
	return name, nil
}

// запись в журнал после успешного прохода, ошибка только в лог
func (s *Syncer) journal(ctx context.Context, report *Report) {
	if s.store == nil {
		return
	}
	var run = Run{
		ChannelID:       report.ChannelID,
		PlaylistID:      report.PlaylistID,
		SpreadsheetID:   report.SpreadsheetID,
		SpreadsheetName: report.SpreadsheetName,
		Created:         report.Created,
		Rows:            report.Rows,
		Finished:        time.Now(),
	}
	if err := s.store.AddRun(ctx, run); err != nil {
		s.log.Warn().Err(err).Msg("history not saved")
	}
}
