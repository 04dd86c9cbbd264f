package ytsheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/youtube/v3"
)

// ChannelResolver - канал -> uploads-плейлист
type ChannelResolver struct {
	yt     *youtube.Service
	prompt Prompt
	log    zerolog.Logger
}

// NewChannelResolver - prompt вызывается, только если id канала не задан
func NewChannelResolver(yt *youtube.Service, prompt Prompt, log zerolog.Logger) *ChannelResolver {
	return &ChannelResolver{yt: yt, prompt: prompt, log: log}
}

// ResolveChannelID - настроенный id как есть; иначе handle, затем поиск по запросу
func (r *ChannelResolver) ResolveChannelID(ctx context.Context, channelID, query string) (string, error) {
	if channelID != "" {
		return channelID, nil
	}
	if query == "" && r.prompt != nil {
		answer, err := r.prompt(ctx, "channel handle or name: ")
		if err != nil {
			return "", fmt.Errorf("channel prompt: %w", err)
		}
		query = strings.TrimSpace(answer)
	}
	if query == "" {
		return "", ErrNoChannelQuery
	}
	r.log.Warn().Str("query", query).Msg("no channel id configured, resolving by handle/search")

	if strings.HasPrefix(query, "@") {
		response, err := r.yt.Channels.List([]string{"id"}).ForHandle(query).Context(ctx).Do()
		if err != nil {
			return "", apiError("channels.list forHandle", err)
		}
		if len(response.Items) > 0 {
			return response.Items[0].Id, nil
		}
	}
	response, err := r.yt.Search.List([]string{"snippet"}).
		Q(strings.TrimPrefix(query, "@")).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", apiError("search.list", err)
	}
	for _, item := range response.Items {
		if item.Id != nil && item.Id.ChannelId != "" {
			return item.Id.ChannelId, nil
		}
		if item.Snippet != nil && item.Snippet.ChannelId != "" {
			return item.Snippet.ChannelId, nil
		}
	}
	return "", fmt.Errorf("no channel matches %q", query)
}

// UploadsPlaylist - id плейлиста загрузок; ok=false, если канал не найден (totalResults == 0)
func (r *ChannelResolver) UploadsPlaylist(ctx context.Context, channelID string) (playlistID string, ok bool, err error) {
	response, err := r.yt.Channels.List([]string{"contentDetails"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		return "", false, apiError("channels.list", err)
	}
	if response.PageInfo == nil || response.PageInfo.TotalResults <= 0 {
		return "", false, nil
	}
	if len(response.Items) == 0 {
		return "", false, fmt.Errorf("%w: channel %s: items empty with totalResults %d", ErrChannelShape, channelID, response.PageInfo.TotalResults)
	}
	var details = response.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil || details.RelatedPlaylists.Uploads == "" {
		return "", false, fmt.Errorf("%w: channel %s", ErrChannelShape, channelID)
	}
	return details.RelatedPlaylists.Uploads, true, nil
}
