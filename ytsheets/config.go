package ytsheets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const scopePrefix = "https://www.googleapis.com/auth/"

// Поддерживаемые версии API: клиенты собраны под конкретные версии
const (
	youtubeAPIVersion = "v3"
	sheetsAPIVersion  = "v4"
	driveAPIVersion   = "v3"
)

var startCellRgx = regexp.MustCompile(`^([A-Z]{1,3})([1-9][0-9]*)$`)

// Config - настройки синхронизации
type Config struct {
	ChannelID         string   `yaml:"channel_id"`
	ChannelQuery      string   `yaml:"channel_query"`    // handle или строка поиска, если channel_id пуст
	SpreadsheetName   string   `yaml:"spreadsheet_name"` // пусто - спросить в консоли
	DataFields        []string `yaml:"data_fields"`
	SheetTabName      string   `yaml:"sheet_tab_name"`
	SheetStart        string   `yaml:"sheet_start_position"`
	YouTubeAPIVersion string   `yaml:"youtube_api_version"`
	SheetAPIVersion   string   `yaml:"sheet_api_version"`
	DriveAPIVersion   string   `yaml:"drive_api_version"`
	Scopes            []string `yaml:"scopes"`
	CredentialFile    string   `yaml:"credential_file"`
	TokenFile         string   `yaml:"token_file"`
	PageSize          int64    `yaml:"page_size"`
	RowHeight         int64    `yaml:"row_height"`
	ColumnWidth       int64    `yaml:"column_width"`
	ImageColumn       int64    `yaml:"image_column"` // колонка картинки внутри таблицы, с нуля
	ClearStaleRows    bool     `yaml:"clear_stale_rows"`
	HistoryDB         string   `yaml:"history_db"`
	LogLevel          string   `yaml:"log_level"`
}

// DefaultConfig - значения по умолчанию до чтения файла
func DefaultConfig() *Config {
	return &Config{
		DataFields:        []string{"Channel", "Title", "URL", "Thumbnail", "Published"},
		SheetTabName:      "Videos",
		SheetStart:        "A1",
		YouTubeAPIVersion: youtubeAPIVersion,
		SheetAPIVersion:   sheetsAPIVersion,
		DriveAPIVersion:   driveAPIVersion,
		Scopes:            []string{"youtube.readonly", "spreadsheets", "drive.metadata.readonly"},
		CredentialFile:    "client_secret.json",
		TokenFile:         "google-token.json",
		PageSize:          50,
		RowHeight:         480,
		ColumnWidth:       480,
		ImageColumn:       3,
		ClearStaleRows:    true,
		HistoryDB:         filepath.Join("data", "history.sqlite3.db"),
		LogLevel:          "info",
	}
}

// LoadConfig - прочитать yaml, применить переменные окружения и проверить
func LoadConfig(configFile string) (*Config, error) {
	var cfg = DefaultConfig()
	r, err := os.Open(configFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	defer r.Close()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfig, configFile, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ключи совместимы со старым .env
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var str = func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var list = func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = splitList(v)
		}
	}
	str("YOUTUBE_CHANNEL_ID", &c.ChannelID)
	str("GOOGLE_SPREADSHEET_NAME", &c.SpreadsheetName)
	str("GOOGLE_SHEET_TAB_NAME", &c.SheetTabName)
	str("GOOGLE_SHEET_START_POSITION", &c.SheetStart)
	str("YOUTUBE_API_VERSION", &c.YouTubeAPIVersion)
	str("GOOGLE_SHEET_API_VERSION", &c.SheetAPIVersion)
	str("DRIVE_API_VERSION", &c.DriveAPIVersion)
	str("GOOGLE_CREDENTIAL_FILE", &c.CredentialFile)
	str("GOOGLE_TOKEN_FILE", &c.TokenFile)
	list("DATA_FIELDS", &c.DataFields)
	list("GOOGLE_SCOPES", &c.Scopes)
	if v, ok := lookup("YOUTUBE_PAGE_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: YOUTUBE_PAGE_SIZE %q is not a number", ErrConfig, v)
		}
		c.PageSize = n
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate - проверка обязательных настроек
func (c *Config) Validate() error {
	var problems []string
	if len(c.DataFields) != recordColumns {
		problems = append(problems, fmt.Sprintf("data_fields must have %d entries, got %d", recordColumns, len(c.DataFields)))
	}
	if c.SheetTabName == "" {
		problems = append(problems, "sheet_tab_name is required")
	}
	if !startCellRgx.MatchString(c.SheetStart) {
		problems = append(problems, fmt.Sprintf("sheet_start_position %q is not an A1 cell", c.SheetStart))
	}
	if c.YouTubeAPIVersion != youtubeAPIVersion {
		problems = append(problems, fmt.Sprintf("youtube_api_version %q unsupported, want %s", c.YouTubeAPIVersion, youtubeAPIVersion))
	}
	if c.SheetAPIVersion != sheetsAPIVersion {
		problems = append(problems, fmt.Sprintf("sheet_api_version %q unsupported, want %s", c.SheetAPIVersion, sheetsAPIVersion))
	}
	if c.DriveAPIVersion != driveAPIVersion {
		problems = append(problems, fmt.Sprintf("drive_api_version %q unsupported, want %s", c.DriveAPIVersion, driveAPIVersion))
	}
	if len(c.Scopes) == 0 {
		problems = append(problems, "scopes are required")
	}
	if c.CredentialFile == "" {
		problems = append(problems, "credential_file is required")
	}
	if c.TokenFile == "" {
		problems = append(problems, "token_file is required")
	}
	if c.PageSize < 1 || c.PageSize > 50 {
		problems = append(problems, fmt.Sprintf("page_size must be in 1..50, got %d", c.PageSize))
	}
	if c.RowHeight <= 0 || c.ColumnWidth <= 0 {
		problems = append(problems, "row_height and column_width must be positive")
	}
	if c.ImageColumn < 0 {
		problems = append(problems, "image_column must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ScopeURLs - полные URL областей доступа
func (c *Config) ScopeURLs() []string {
	var scopes = make([]string, 0, len(c.Scopes))
	for _, scope := range c.Scopes {
		if strings.HasPrefix(scope, "https://") {
			scopes = append(scopes, scope)
			continue
		}
		scopes = append(scopes, scopePrefix+scope)
	}
	return scopes
}

// Layout - положение таблицы на листе
type Layout struct {
	Tab    string
	Column int // первая колонка, с нуля
	Row    int // строка заголовка, с единицы как в A1
	Width  int
}

// Layout - разобранная sheet_start_position
func (c *Config) Layout() Layout {
	var layout = Layout{Tab: c.SheetTabName, Row: 1, Width: len(c.DataFields)}
	if m := startCellRgx.FindStringSubmatch(c.SheetStart); m != nil {
		layout.Column = columnIndex(m[1])
		layout.Row, _ = strconv.Atoi(m[2])
	}
	return layout
}

// StartRange - ячейка заголовка: Videos!A1
func (l Layout) StartRange() string {
	return fmt.Sprintf("%s!%s%d", quoteTab(l.Tab), columnName(l.Column), l.Row)
}

// TailRange - столбцы таблицы ниже rows записанных строк: Videos!A64:E
func (l Layout) TailRange(rows int) string {
	return fmt.Sprintf("%s!%s%d:%s", quoteTab(l.Tab), columnName(l.Column), l.Row+rows, columnName(l.Column+l.Width-1))
}

// DataRows - индексы строк данных на листе (с нуля), включительно
func (l Layout) DataRows(records int) (first, last int64) {
	return int64(l.Row), int64(l.Row + records - 1)
}

var bareTabRgx = regexp.MustCompile(`^[A-Za-z_]+$`)

// quoteTab - имя листа в A1-нотации, апостроф удваивается
func quoteTab(name string) string {
	if bareTabRgx.MatchString(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnIndex - A -> 0, Z -> 25, AA -> 26
func columnIndex(name string) int {
	var n = 0
	for _, ch := range name {
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1
}

func columnName(index int) string {
	var name []byte
	for index++; index > 0; index = (index - 1) / 26 {
		name = append([]byte{byte('A' + (index-1)%26)}, name...)
	}
	return string(name)
}
