package ytsheets

import (
	"fmt"
	"time"

	"google.golang.org/api/youtube/v3"
)

const (
	videoURLTemplate = "https://www.youtube.com/watch?v=%s"
	imageFormula     = `=IMAGE("%s", 3)`
	// publishedLayout - единственный принимаемый формат publishedAt
	publishedLayout = "2006-01-02T15:04:05Z"
	// isoLayout - вывод без зоны, как naive datetime
	isoLayout = "2006-01-02T15:04:05"
)

// VideoRecord - одна строка истории загрузок
type VideoRecord struct {
	ChannelTitle string
	Title        string
	URL          string
	ImageFormula string
	PublishedAt  *string // nil, если дату не удалось разобрать
}

// Row - значения ячеек в порядке колонок таблицы.
// Пустая дата пишется пустой строкой: null в values.update пропускается
// и оставил бы старое значение ячейки.
func (r VideoRecord) Row() []interface{} {
	var published = ""
	if r.PublishedAt != nil {
		published = *r.PublishedAt
	}
	return []interface{}{r.ChannelTitle, r.Title, r.URL, r.ImageFormula, published}
}

// recordColumns - ширина строки VideoRecord
const recordColumns = 5

// NormalizeItem - преобразовать элемент playlistItems в VideoRecord
func NormalizeItem(item *youtube.PlaylistItem) VideoRecord {
	var record VideoRecord
	if item == nil || item.Snippet == nil {
		return record
	}
	var s = item.Snippet
	record.ChannelTitle = s.ChannelTitle
	record.Title = s.Title
	if s.ResourceId != nil && s.ResourceId.VideoId != "" {
		record.URL = fmt.Sprintf(videoURLTemplate, s.ResourceId.VideoId)
	}
	if s.Thumbnails != nil && s.Thumbnails.High != nil && s.Thumbnails.High.Url != "" {
		record.ImageFormula = fmt.Sprintf(imageFormula, s.Thumbnails.High.Url)
	}
	record.PublishedAt = NormalizeTimestamp(s.PublishedAt)
	return record
}

// NormalizeTimestamp - YYYY-MM-DDTHH:MM:SSZ -> ISO-8601 без зоны, иначе nil
func NormalizeTimestamp(value string) *string {
	// time.Parse допускает дробные секунды, формат строгий
	if len(value) != len(publishedLayout) {
		return nil
	}
	t, err := time.Parse(publishedLayout, value)
	if err != nil {
		return nil
	}
	var iso = t.Format(isoLayout)
	return &iso
}

// Table - история загрузок: заголовок и строки в порядке выдачи API
type Table struct {
	Header  []string
	Records []VideoRecord
}

// Len - число строк вместе с заголовком
func (t Table) Len() int {
	return len(t.Records) + 1
}

// Values - тело для values.update
func (t Table) Values() [][]interface{} {
	var values = make([][]interface{}, 0, t.Len())
	var header = make([]interface{}, len(t.Header))
	for i, field := range t.Header {
		header[i] = field
	}
	values = append(values, header)
	for _, r := range t.Records {
		values = append(values, r.Row())
	}
	return values
}
