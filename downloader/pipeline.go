package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/NachoToast/NachoMusic/bus"
	"github.com/NachoToast/NachoMusic/model"
	"github.com/NachoToast/NachoMusic/reporter"
)

// MediaStreamer 把媒体流写入磁盘的提供方。
// onProgress 在每个底层进度刻度时调用，返回时流已关闭
type MediaStreamer interface {
	Stream(ctx context.Context, url string, destination string, onProgress func(chunk, done, total int64)) error
}

// Searcher 元数据查询的提供方，与搜索服务共用同一套搜索能力
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.VideoResult, error)
}

// Sender 向主应用发送事件的最小接口
type Sender interface {
	Send(event model.EventName, data interface{}) error
}

// Service 下载管线。每个任务把两个独立完成的异步操作
// （媒体流落盘、元数据查询）汇合成一个原子的完成事件。
// 任务只以来源 URL 标识，不做去重：同一 URL 的并发请求
// 会各自独立运行并竞争同一个目标文件，由 UI 保证不重复触发
type Service struct {
	streamer   MediaStreamer
	searcher   Searcher
	sender     Sender
	rep        *reporter.Reporter
	httpClient *http.Client
}

// NewService 创建下载管线
func NewService(streamer MediaStreamer, searcher Searcher, sender Sender, rep *reporter.Reporter) *Service {
	return &Service{
		streamer:   streamer,
		searcher:   searcher,
		sender:     sender,
		rep:        rep,
		httpClient: http.DefaultClient,
	}
}

// Register 在总线上注册下载请求订阅
func (s *Service) Register(b *bus.Bus) {
	b.On(model.YoutubeDownloadStart, s.handleStart)
}

func (s *Service) handleStart(data json.RawMessage) error {
	var request model.DownloadRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return fmt.Errorf("解析下载请求失败: %w", err)
	}

	go s.run(request)
	return nil
}

// run 执行一个下载任务直到终态。
// 成功时恰好发出一个完成事件；任何阶段失败只上报错误，
// 不发完成事件，已写入的部分文件留在磁盘上不清理
func (s *Service) run(request model.DownloadRequest) {
	ctx := context.Background()
	mediaPath := request.DestinationPath + ".mp4"

	// 媒体流与元数据查询互不等待，同时开始
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- s.streamer.Stream(ctx, request.URL, mediaPath, func(chunk, done, total int64) {
			// 每个进度刻度原样广播，不合并不限流
			s.sender.Send(model.YoutubeDownloadProgress, model.DownloadProgress{
				Chunk: chunk,
				Done:  done,
				Total: total,
				URL:   request.URL,
			})
		})
	}()

	type metadataResult struct {
		results []model.VideoResult
		err     error
	}
	metadataDone := make(chan metadataResult, 1)
	go func() {
		results, err := s.searcher.Search(ctx, request.URL, 1)
		metadataDone <- metadataResult{results, err}
	}()

	// 两者都完成才能继续：只有流没有标题作者，只有元数据没有落盘字节
	streamErr := <-streamDone
	metadata := <-metadataDone

	if streamErr != nil {
		s.rep.Report(fmt.Errorf("下载 %s 失败: %w", request.URL, streamErr), false)
		return
	}
	if metadata.err != nil {
		s.rep.Report(fmt.Errorf("查询 %s 的元数据失败: %w", request.URL, metadata.err), false)
		return
	}

	// 元数据校验：必须恰好命中一个视频类型的结果
	if len(metadata.results) < 1 {
		s.rep.Report(fmt.Errorf("从 %s 没有得到任何搜索结果", request.URL), false)
		return
	}
	if metadata.results[0].Type != "video" {
		s.rep.Report(fmt.Errorf("从 %s 得到了非视频（%s）结果", request.URL, metadata.results[0].Type), false)
		return
	}

	video := metadata.results[0]

	// 缩略图可选，失败降级为 nil，不影响整个任务
	thumbnail := s.downloadThumbnail(&video, request.DestinationPath)

	stat, err := os.Stat(mediaPath)
	if err != nil {
		s.rep.Report(fmt.Errorf("读取 %s 的媒体文件信息失败: %w", request.URL, err), false)
		return
	}

	duration := "0:00"
	if video.Duration != nil && *video.Duration != "" {
		duration = *video.Duration
	}

	artist := "Unknown Artist"
	if video.Author != nil && video.Author.Name != "" {
		artist = video.Author.Name
	}

	s.sender.Send(model.YoutubeDownloadDone, model.StoredVideo{
		URL:            request.URL,
		ID:             video.ID,
		Title:          video.Title,
		Artist:         artist,
		Duration:       durationToSeconds(duration),
		DateDownloaded: time.Now().UnixMilli(),
		Thumbnail:      thumbnail,
		Size:           stat.Size(),
	})
}

// downloadThumbnail 获取并落盘缩略图，扩展名取自缩略图地址
// 自身路径的扩展名。任何失败都只上报并返回 nil
func (s *Service) downloadThumbnail(video *model.VideoResult, destinationPath string) *model.ThumbnailInfo {
	thumbnailURL := video.BestThumbnail.URL
	if thumbnailURL == "" {
		return nil
	}

	parsed, err := url.Parse(thumbnailURL)
	if err != nil {
		s.rep.Report(fmt.Errorf("解析缩略图地址 %s 失败: %w", thumbnailURL, err), false)
		return nil
	}

	extension := path.Ext(parsed.Path)
	destination := destinationPath + extension

	if err := s.fetchToFile(thumbnailURL, destination); err != nil {
		s.rep.Report(fmt.Errorf("下载 %s 的缩略图失败: %w", video.URL, err), false)
		return nil
	}

	stat, err := os.Stat(destination)
	if err != nil {
		s.rep.Report(fmt.Errorf("读取缩略图文件信息失败: %w", err), false)
		return nil
	}

	return &model.ThumbnailInfo{Extension: extension, Size: stat.Size()}
}

// fetchToFile 把一个 HTTP 资源完整写入目标文件
func (s *Service) fetchToFile(rawURL string, destination string) error {
	resp, err := s.httpClient.Get(rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("状态码: %d", resp.StatusCode)
	}

	file, err := os.Create(destination)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, resp.Body)
	return err
}
