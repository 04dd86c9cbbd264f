package ytsheets

import (
	"context"
	"io"

	"github.com/cheggaaa/pb/v3"
	"github.com/rs/zerolog"
	"google.golang.org/api/youtube/v3"
)

// Collector - постраничный обход плейлиста
type Collector struct {
	yt       *youtube.Service
	pageSize int64
	progress io.Writer // nil - без прогресс-бара
	log      zerolog.Logger
}

// NewCollector - pageSize не больше 50 (максимум playlistItems.list)
func NewCollector(yt *youtube.Service, pageSize int64, progress io.Writer, log zerolog.Logger) *Collector {
	return &Collector{yt: yt, pageSize: pageSize, progress: progress, log: log}
}

// Collect - все элементы плейлиста в порядке страниц.
// Ошибка любой страницы отбрасывает уже собранное.
func (c *Collector) Collect(ctx context.Context, playlistID string) ([]VideoRecord, error) {
	var (
		records   []VideoRecord
		nextToken string
		bar       *pb.ProgressBar
	)
	for page := 1; ; page++ {
		var call = c.yt.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(c.pageSize).
			Context(ctx)
		if nextToken != "" {
			call = call.PageToken(nextToken)
		}
		response, err := call.Do()
		if err != nil {
			if bar != nil {
				bar.Finish()
			}
			return nil, &CollectError{PlaylistID: playlistID, Page: page, Err: err}
		}
		if bar == nil && c.progress != nil && response.PageInfo != nil {
			bar = pb.New64(response.PageInfo.TotalResults).SetWriter(c.progress).Start()
		}
		for _, item := range response.Items {
			records = append(records, NormalizeItem(item))
		}
		if bar != nil {
			bar.Add(len(response.Items))
		}
		c.log.Debug().Str("playlist", playlistID).Int("page", page).Int("items", len(response.Items)).Msg("page collected")

		// пустая страница не конечна, пока есть курсор
		nextToken = response.NextPageToken
		if nextToken == "" {
			break
		}
	}
	if bar != nil {
		bar.Finish()
	}
	c.log.Info().Str("playlist", playlistID).Int("videos", len(records)).Msg("playlist collected")
	return records, nil
}
