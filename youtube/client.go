package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/NachoToast/NachoMusic/model"
	"github.com/lrstanley/go-ytdlp"
)

// 进度回调的采样间隔，每个刻度都会被管线原样转发
const progressInterval = 250 * time.Millisecond

// Client 基于 yt-dlp 的 YouTube 提供方，
// 同时实现搜索、元数据查询、自动补全和媒体流下载
type Client struct {
	httpClient *http.Client
	suggestURL string
}

// NewClient 创建 YouTube 客户端
func NewClient() *Client {
	return &Client{
		httpClient: http.DefaultClient,
		suggestURL: defaultSuggestURL,
	}
}

// Search 执行一次 ytsearch 查询，返回最多 limit 条结果
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.VideoResult, error) {
	if limit < 1 {
		limit = 1
	}

	dl := ytdlp.New().
		SkipDownload().
		DumpJSON().
		FlatPlaylist().
		NoWarnings()

	result, err := dl.Run(ctx, fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		return nil, fmt.Errorf("执行搜索失败: %w", err)
	}

	return parseSearchOutput(result.Stdout)
}

// Stream 把媒体流直接写入目标文件，按进度刻度回调。
// 返回时流已经完整落盘或以错误告终
func (c *Client) Stream(ctx context.Context, url string, destination string, onProgress func(chunk, done, total int64)) error {
	var mu sync.Mutex
	var lastDone int64

	dl := ytdlp.New().
		Format("bestaudio").
		Output(destination).
		NoPlaylist().
		NoProgress().
		NoWarnings()

	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		done := int64(update.DownloadedBytes)
		total := int64(update.TotalBytes)

		mu.Lock()
		chunk := done - lastDone
		lastDone = done
		mu.Unlock()

		onProgress(chunk, done, total)
	})

	if _, err := dl.Run(ctx, url); err != nil {
		return fmt.Errorf("下载媒体流失败: %w", err)
	}

	return nil
}

// parseSearchOutput 解析 yt-dlp --dump-json 按行输出的 JSON 条目
func parseSearchOutput(stdout string) ([]model.VideoResult, error) {
	var results []model.VideoResult

	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var entry searchEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("解析搜索条目失败: %w", err)
		}

		results = append(results, entry.toVideoResult())
	}

	return results, nil
}

// searchEntry yt-dlp 扁平模式下的单条搜索结果
type searchEntry struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	URL               string      `json:"url"`
	WebpageURL        string      `json:"webpage_url"`
	Duration          *float64    `json:"duration"` // 秒
	Description       *string     `json:"description"`
	ViewCount         *int        `json:"view_count"`
	Channel           string      `json:"channel"`
	ChannelID         string      `json:"channel_id"`
	ChannelURL        string      `json:"channel_url"`
	ChannelIsVerified bool        `json:"channel_is_verified"`
	LiveStatus        string      `json:"live_status"`
	IeKey             string      `json:"ie_key"`
	Thumbnails        []thumbnail `json:"thumbnails"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (e *searchEntry) toVideoResult() model.VideoResult {
	out := model.VideoResult{
		Type:       "video",
		IsLive:     e.LiveStatus == "is_live",
		IsUpcoming: e.LiveStatus == "is_upcoming",
	}

	// 扁平模式下频道和播放列表条目由解析器标识区分
	if e.IeKey != "" && e.IeKey != "Youtube" {
		out.Type = "other"
	}

	out.ID = e.ID
	out.Title = e.Title
	out.URL = e.WebpageURL
	if out.URL == "" {
		out.URL = e.URL
	}
	out.BestThumbnail = bestThumbnail(e.Thumbnails)
	out.Badges = []string{}
	out.Description = e.Description
	out.Views = e.ViewCount

	if e.Duration != nil {
		duration := secondsToDuration(int(*e.Duration))
		out.Duration = &duration
	}

	if e.Channel != "" {
		out.Author = &model.Author{
			Name:        e.Channel,
			ChannelID:   e.ChannelID,
			URL:         e.ChannelURL,
			OwnerBadges: []string{},
			Verified:    e.ChannelIsVerified,
		}
	}

	return out
}

// bestThumbnail 取面积最大的缩略图
func bestThumbnail(all []thumbnail) model.Image {
	var best model.Image
	for _, t := range all {
		if t.Width*t.Height >= best.Width*best.Height {
			best = model.Image{URL: t.URL, Width: t.Width, Height: t.Height}
		}
	}
	return best
}

// secondsToDuration 把秒数格式化为 "H:MM:SS"，不足一小时为 "M:SS"
func secondsToDuration(total int) string {
	if total < 0 {
		total = 0
	}

	hours := total / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
