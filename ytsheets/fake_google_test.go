package ytsheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/youtube/v3"
)

// recordedRequest - запрос, дошедший до фейкового API
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   []byte
}

type fakeSpreadsheet struct {
	title  string
	sheets []*sheets.SheetProperties
}

// fakeGoogle - YouTube, Drive и Sheets в памяти
type fakeGoogle struct {
	t  *testing.T
	mu sync.Mutex

	channels  map[string]string                    // channel id -> uploads playlist
	handles   map[string]string                    // @handle -> channel id
	search    map[string]string                    // query -> channel id
	playlists map[string][][]*youtube.PlaylistItem // playlist id -> страницы
	files     []*drive.File
	filesPage int // размер страницы files.list, 0 - всё одной страницей
	books     map[string]*fakeSpreadsheet
	failPaths map[string]int // суффикс пути -> HTTP статус ошибки

	created  int
	requests []recordedRequest
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	return &fakeGoogle{
		t:         t,
		channels:  map[string]string{},
		handles:   map[string]string{},
		search:    map[string]string{},
		playlists: map[string][][]*youtube.PlaylistItem{},
		books:     map[string]*fakeSpreadsheet{},
		failPaths: map[string]int{},
	}
}

// session - сервисы, направленные на httptest-сервер
func (f *fakeGoogle) session() *Session {
	f.t.Helper()
	var srv = httptest.NewServer(f)
	f.t.Cleanup(srv.Close)
	session, err := NewSession(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		f.t.Fatalf("NewSession() error = %v", err)
	}
	return session
}

// addSpreadsheet - существующая таблица, видимая в Drive
func (f *fakeGoogle) addSpreadsheet(id, title string, tabs ...string) {
	var book = &fakeSpreadsheet{title: title}
	for i, tab := range tabs {
		book.sheets = append(book.sheets, &sheets.SheetProperties{SheetId: int64(i * 100), Title: tab})
	}
	f.books[id] = book
	f.files = append(f.files, &drive.File{Id: id, Name: title})
}

func (f *fakeGoogle) calls(method, suffix string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Method == method && strings.HasSuffix(r.Path, suffix) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: body})

	var p = r.URL.Path
	for suffix, status := range f.failPaths {
		if strings.HasSuffix(p, suffix) {
			writeJSON(w, status, map[string]interface{}{
				"error": map[string]interface{}{"code": status, "message": "injected failure"},
			})
			return
		}
	}
	switch {
	case strings.HasSuffix(p, "/youtube/v3/channels"):
		f.serveChannels(w, r)
	case strings.HasSuffix(p, "/youtube/v3/search"):
		f.serveSearch(w, r)
	case strings.HasSuffix(p, "/youtube/v3/playlistItems"):
		f.servePlaylistItems(w, r)
	case strings.HasSuffix(p, "/files"):
		f.serveFiles(w, r)
	case r.Method == http.MethodPost && strings.HasSuffix(p, "/v4/spreadsheets"):
		f.serveCreate(w, body)
	case strings.HasSuffix(p, ":batchUpdate"):
		writeJSON(w, http.StatusOK, &sheets.BatchUpdateSpreadsheetResponse{})
	case strings.HasSuffix(p, ":clear"):
		writeJSON(w, http.StatusOK, &sheets.ClearValuesResponse{})
	case strings.Contains(p, "/values/"):
		f.serveValuesUpdate(w, p, body)
	case r.Method == http.MethodGet && strings.Contains(p, "/v4/spreadsheets/"):
		f.serveGet(w, p)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGoogle) serveChannels(w http.ResponseWriter, r *http.Request) {
	var q = r.URL.Query()
	var response = &youtube.ChannelListResponse{PageInfo: &youtube.PageInfo{}}
	if handle := q.Get("forHandle"); handle != "" {
		if id, ok := f.handles[handle]; ok {
			response.Items = []*youtube.Channel{{Id: id}}
			response.PageInfo.TotalResults = 1
		}
		writeJSON(w, http.StatusOK, response)
		return
	}
	if uploads, ok := f.channels[q.Get("id")]; ok {
		response.PageInfo.TotalResults = 1
		var channel = &youtube.Channel{Id: q.Get("id")}
		if uploads != "" {
			channel.ContentDetails = &youtube.ChannelContentDetails{
				RelatedPlaylists: &youtube.ChannelContentDetailsRelatedPlaylists{Uploads: uploads},
			}
		}
		response.Items = []*youtube.Channel{channel}
	}
	writeJSON(w, http.StatusOK, response)
}

func (f *fakeGoogle) serveSearch(w http.ResponseWriter, r *http.Request) {
	var response = &youtube.SearchListResponse{PageInfo: &youtube.PageInfo{}}
	if id, ok := f.search[r.URL.Query().Get("q")]; ok {
		response.Items = []*youtube.SearchResult{{Id: &youtube.ResourceId{Kind: "youtube#channel", ChannelId: id}}}
		response.PageInfo.TotalResults = 1
	}
	writeJSON(w, http.StatusOK, response)
}

func (f *fakeGoogle) servePlaylistItems(w http.ResponseWriter, r *http.Request) {
	var q = r.URL.Query()
	pages, ok := f.playlists[q.Get("playlistId")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{"code": 404, "message": "playlistNotFound"},
		})
		return
	}
	var index = 0
	if token := q.Get("pageToken"); token != "" {
		index, _ = strconv.Atoi(strings.TrimPrefix(token, "page-"))
	}
	var total int64
	for _, page := range pages {
		total += int64(len(page))
	}
	var response = &youtube.PlaylistItemListResponse{
		PageInfo: &youtube.PageInfo{TotalResults: total, ResultsPerPage: 50},
	}
	if index < len(pages) {
		response.Items = pages[index]
	}
	if index+1 < len(pages) {
		response.NextPageToken = fmt.Sprintf("page-%d", index+1)
	}
	writeJSON(w, http.StatusOK, response)
}

func (f *fakeGoogle) serveFiles(w http.ResponseWriter, r *http.Request) {
	var start = 0
	if token := r.URL.Query().Get("pageToken"); token != "" {
		start, _ = strconv.Atoi(token)
	}
	var end = len(f.files)
	if f.filesPage > 0 && start+f.filesPage < end {
		end = start + f.filesPage
	}
	var response = &drive.FileList{Files: f.files[start:end]}
	if end < len(f.files) {
		response.NextPageToken = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, response)
}

func (f *fakeGoogle) serveCreate(w http.ResponseWriter, body []byte) {
	var spreadsheet sheets.Spreadsheet
	if err := json.Unmarshal(body, &spreadsheet); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.created++
	var id = fmt.Sprintf("created-%d", f.created)
	var tabs []string
	for _, s := range spreadsheet.Sheets {
		tabs = append(tabs, s.Properties.Title)
	}
	f.addSpreadsheet(id, spreadsheet.Properties.Title, tabs...)
	spreadsheet.SpreadsheetId = id
	writeJSON(w, http.StatusOK, &spreadsheet)
}

func (f *fakeGoogle) serveValuesUpdate(w http.ResponseWriter, path string, body []byte) {
	var vr sheets.ValueRange
	if err := json.Unmarshal(body, &vr); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var rng = path[strings.Index(path, "/values/")+len("/values/"):]
	writeJSON(w, http.StatusOK, &sheets.UpdateValuesResponse{UpdatedRange: rng, UpdatedRows: int64(len(vr.Values))})
}

func (f *fakeGoogle) serveGet(w http.ResponseWriter, path string) {
	var id = path[strings.LastIndex(path, "/")+1:]
	book, ok := f.books[id]
	if !ok {
		http.NotFound(w, nil)
		return
	}
	var response = &sheets.Spreadsheet{SpreadsheetId: id, Properties: &sheets.SpreadsheetProperties{Title: book.title}}
	for _, props := range book.sheets {
		response.Sheets = append(response.Sheets, &sheets.Sheet{Properties: props})
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// playlistItem - элемент плейлиста в формате API
func playlistItem(videoID, title, publishedAt string) *youtube.PlaylistItem {
	return &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			ChannelTitle: "Test Channel",
			Title:        title,
			PublishedAt:  publishedAt,
			ResourceId:   &youtube.ResourceId{Kind: "youtube#video", VideoId: videoID},
			Thumbnails: &youtube.ThumbnailDetails{
				High: &youtube.Thumbnail{Url: "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"},
			},
		},
	}
}

// makePage - n элементов с id prefix-0..prefix-(n-1)
func makePage(prefix string, n int) []*youtube.PlaylistItem {
	var items = make([]*youtube.PlaylistItem, 0, n)
	for i := 0; i < n; i++ {
		var id = fmt.Sprintf("%s-%d", prefix, i)
		items = append(items, playlistItem(id, "Video "+id, "2024-01-02T03:04:05Z"))
	}
	return items
}

func testConfig() *Config {
	var cfg = DefaultConfig()
	cfg.ChannelID = "UC123"
	cfg.SpreadsheetName = "History 2024"
	cfg.HistoryDB = ""
	return cfg
}

var nopLog = zerolog.Nop()
