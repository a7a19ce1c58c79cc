package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NachoToast/NachoMusic/bus"
	"github.com/NachoToast/NachoMusic/model"
)

// Searcher 完整视频搜索的提供方
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.VideoResult, error)
}

// Suggester 自动补全建议的提供方
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

// Sender 向主应用发送事件的最小接口
type Sender interface {
	Send(event model.EventName, data interface{}) error
}

// Service 搜索服务，在总线上处理搜索请求事件
type Service struct {
	searcher  Searcher
	suggester Suggester
	sender    Sender
}

// NewService 创建搜索服务
func NewService(searcher Searcher, suggester Suggester, sender Sender) *Service {
	return &Service{
		searcher:  searcher,
		suggester: suggester,
		sender:    sender,
	}
}

// Register 在总线上注册搜索请求订阅
func (s *Service) Register(b *bus.Bus) {
	b.On(model.YoutubeSearchQuery, s.handleQuery)
}

// handleQuery 处理一次搜索请求。
// 失败只上报，不发出部分结果
func (s *Service) handleQuery(data json.RawMessage) error {
	var query model.SearchRequest
	if err := json.Unmarshal(data, &query); err != nil {
		return fmt.Errorf("解析搜索请求失败: %w", err)
	}

	ctx := context.Background()

	if !query.Final {
		// 只要自动补全建议，limit 在这条路径上被忽略
		suggestions, err := s.suggester.Suggest(ctx, query.QueryString)
		if err != nil {
			return fmt.Errorf("获取 %q 的自动补全建议失败: %w", query.QueryString, err)
		}

		return s.sender.Send(model.YoutubeSearchAutocompleteSuggestions, suggestions)
	}

	// 要完整视频结果
	allResults, err := s.searcher.Search(ctx, query.QueryString, query.Limit)
	if err != nil {
		return fmt.Errorf("获取 %q 的搜索结果失败: %w", query.QueryString, err)
	}

	// 过滤非视频以及正在直播或未开播的条目，保留提供方顺序
	outputResults := make([]model.SearchedVideo, 0, len(allResults))
	for _, video := range allResults {
		if video.Type != "video" {
			continue
		}
		if video.IsLive || video.IsUpcoming {
			continue
		}

		outputResults = append(outputResults, video.SearchedVideo)
	}

	return s.sender.Send(model.YoutubeSearchResult, outputResults)
}
