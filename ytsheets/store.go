package ytsheets

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" //импорт драйвера SQLite3
)

// Run - запись журнала об одной завершённой синхронизации
type Run struct {
	ChannelID       string
	PlaylistID      string
	SpreadsheetID   string
	SpreadsheetName string
	Created         bool // таблица создана в этом запуске
	Rows            int  // строк вместе с заголовком
	Finished        time.Time
}

// Store - журнал запусков в SQLite. Кешем метаданных видео не является
type Store struct {
	db *sql.DB
}

// NewStore - подключение к БД, папка создаётся при необходимости
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create history folder: %w", err)
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open history db: %w", err)
	}
	var store = &Store{db: conn}
	if err := store.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) init() error {
	const createTable = `CREATE TABLE IF NOT EXISTS sync_runs (
		channel_id TEXT(100) NOT NULL,
		playlist_id TEXT(100) NOT NULL,
		spreadsheet_id TEXT(200) NOT NULL,
		spreadsheet_name TEXT(400) NOT NULL,
		created NUMERIC DEFAULT 0 NOT NULL,
		"rows" INTEGER NOT NULL,
		finished INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sync_runs_channel_IDX ON sync_runs (channel_id, finished DESC);`
	if _, err := s.db.Exec(createTable); err != nil {
		return fmt.Errorf("init history db: %w", err)
	}
	return nil
}

// Close - закрыть БД
func (s *Store) Close() error {
	return s.db.Close()
}

// AddRun - добавить запись о запуске
func (s *Store) AddRun(ctx context.Context, run Run) error {
	const insert = `INSERT INTO sync_runs
		(channel_id, playlist_id, spreadsheet_id, spreadsheet_name, created, "rows", finished)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := s.db.ExecContext(ctx, insert,
		run.ChannelID, run.PlaylistID, run.SpreadsheetID, run.SpreadsheetName,
		run.Created, run.Rows, run.Finished.Unix())
	if err != nil {
		return fmt.Errorf("add history run: %w", err)
	}
	return nil
}

// Recent - последние limit запусков, новые первыми
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	const selectRecent = `SELECT channel_id, playlist_id, spreadsheet_id, spreadsheet_name, created, "rows", finished
		FROM sync_runs ORDER BY finished DESC, rowid DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var (
			run      Run
			finished int64
		)
		if err := rows.Scan(&run.ChannelID, &run.PlaylistID, &run.SpreadsheetID, &run.SpreadsheetName,
			&run.Created, &run.Rows, &finished); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		run.Finished = time.Unix(finished, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
