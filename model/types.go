package model

import "encoding/json"

// EventName 自定义事件名称，与主应用共享的固定事件目录
type EventName string

const (
	// 通用事件
	ExtensionError EventName = "extensionError" // 扩展错误上报
	ExtensionLog   EventName = "extensionLog"   // 扩展日志上报

	// YouTube 搜索
	YoutubeSearchQuery                   EventName = "youtubeSearchQuery"                   // 搜索请求
	YoutubeSearchAutocompleteSuggestions EventName = "youtubeSearchAutocompleteSuggestions" // 自动补全建议
	YoutubeSearchResult                  EventName = "youtubeSearchResult"                  // 完整搜索结果

	// 文件服务器
	FileServerInfo EventName = "fileServerInfo" // 文件服务器端口通告

	// YouTube 下载
	YoutubeDownloadStart    EventName = "youtubeDownloadStart"    // 下载请求
	YoutubeDownloadProgress EventName = "youtubeDownloadProgress" // 下载进度
	YoutubeDownloadDone     EventName = "youtubeDownloadDone"     // 下载完成记录
)

const (
	// WindowClose 主应用窗口关闭的生命周期事件
	WindowClose EventName = "windowClose"
	// AppClientConnect 主应用客户端（重新）连接的生命周期事件
	AppClientConnect EventName = "appClientConnect"
	// Ready 内部就绪信号，收到 AppClientConnect 后在总线上发出
	Ready EventName = "ready"
)

// MethodBroadcast 向主应用广播事件的唯一方法名
const MethodBroadcast = "app.broadcast"

// EnvelopeData 外发信封的内层负载
type EnvelopeData struct {
	Event EventName   `json:"event"`
	Data  interface{} `json:"data"`
}

// OutgoingEnvelope 从扩展发往主应用的消息信封
type OutgoingEnvelope struct {
	ID          string       `json:"id"` // UUID v4
	Method      string       `json:"method"`
	AccessToken string       `json:"accessToken"`
	Data        EnvelopeData `json:"data"`
}

// IncomingFrame 从套接字收到的单个帧，分类前的统一形态。
// Event 为 nil 表示这是一条此前发送消息的回执
type IncomingFrame struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Event  *EventName      `json:"event,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// IsFeedback 判断帧是否为发送回执
func (f *IncomingFrame) IsFeedback() bool {
	return f.Event == nil
}

// ErrorData 错误上报的数据结构
type ErrorData struct {
	ID      string `json:"id"`      // 扩展标识
	Message string `json:"message"` // 错误消息
	Stack   string `json:"stack"`   // 调用栈，不可用时为 "Unknown"
	Name    string `json:"name"`    // 错误类型名
}

// LogData 日志上报的数据结构
type LogData struct {
	ID      string      `json:"id"`
	Message interface{} `json:"message"`
}

// SearchRequest 搜索请求
type SearchRequest struct {
	Final       bool   `json:"final"` // true 要完整结果，false 只要自动补全建议
	QueryString string `json:"queryString"`
	Limit       int    `json:"limit"`
}

// Image 缩略图或头像
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Author 视频作者信息
type Author struct {
	Name        string   `json:"name"`
	ChannelID   string   `json:"channelID"`
	URL         string   `json:"url"`
	BestAvatar  *Image   `json:"bestAvatar"`
	OwnerBadges []string `json:"ownerBadges"`
	Verified    bool     `json:"verified"`
}

// SearchedVideo 搜索结果的固定输出形态
type SearchedVideo struct {
	Title         string   `json:"title"`
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	BestThumbnail Image    `json:"bestThumbnail"`
	Badges        []string `json:"badges"`
	Author        *Author  `json:"author"`
	Description   *string  `json:"description"`
	Views         *int     `json:"views"`
	Duration      *string  `json:"duration"`   // "H:MM:SS" 形式
	UploadedAt    *string  `json:"uploadedAt"` // 如 "2 years ago"
}

// VideoResult 搜索提供方返回的单条结果，含过滤所需的标记
type VideoResult struct {
	Type       string // "video" 以外的类型会被过滤掉
	IsLive     bool
	IsUpcoming bool
	SearchedVideo
}

// DownloadRequest 下载请求
type DownloadRequest struct {
	URL             string `json:"url"`
	DestinationPath string `json:"destinationPath"`
}

// DownloadProgress 下载进度，每个底层进度刻度原样转发
type DownloadProgress struct {
	Done  int64  `json:"done"`
	Total int64  `json:"total"`
	Chunk int64  `json:"chunk"`
	URL   string `json:"url"`
}

// ThumbnailInfo 已落盘缩略图的记录
type ThumbnailInfo struct {
	Extension string `json:"extension"` // 含点号，如 ".jpg"
	Size      int64  `json:"size"`
}

// StoredVideo 下载完成后的最终记录，youtubeDownloadDone 的负载
type StoredVideo struct {
	URL            string         `json:"url"`
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Artist         string         `json:"artist"`
	Duration       int            `json:"duration"`       // 秒
	DateDownloaded int64          `json:"dateDownloaded"` // 毫秒时间戳
	Thumbnail      *ThumbnailInfo `json:"thumbnail"`
	Size           int64          `json:"size"`
}
