package fileserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/NachoToast/NachoMusic/bus"
	"github.com/NachoToast/NachoMusic/model"
)

// Sender 向主应用发送事件的最小接口
type Sender interface {
	Send(event model.EventName, data interface{}) error
}

// Server 临时本地 HTTP 服务器，把已下载的媒体和缩略图按路径
// 暴露给渲染进程，使其可以用 URL 引用本地文件。
// 只绑定回环地址，且与受信任的本地 UI 一对一配对，
// 因此不做路径穿越防护
type Server struct {
	sender   Sender
	listener net.Listener
	port     int
}

// New 创建文件服务器
func New(sender Sender) *Server {
	return &Server{sender: sender}
}

// Register 在总线上注册就绪信号订阅。
// 首次就绪时绑定端口并通告；此后每次就绪（UI 重新加载）
// 重新通告同一个端口，进程生命周期内不重新绑定
func (s *Server) Register(b *bus.Bus) {
	b.Once(model.Ready, func(json.RawMessage) error {
		if err := s.start(); err != nil {
			return fmt.Errorf("启动文件服务器失败: %w", err)
		}

		s.announce()

		// UI 重新加载时把当前使用的端口再告诉它一次
		b.On(model.Ready, func(json.RawMessage) error {
			s.announce()
			return nil
		})

		return nil
	})
}

// Port 返回已绑定的端口，未启动时为 0
func (s *Server) Port() int {
	return s.port
}

func (s *Server) start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	go func() {
		server := &http.Server{Handler: http.HandlerFunc(s.handleRequest)}
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("文件服务器已停止: %v", err)
		}
	}()

	log.Printf("文件服务器监听端口 %d", s.port)
	return nil
}

func (s *Server) announce() {
	s.sender.Send(model.FileServerInfo, s.port)
}

// handleRequest 把请求路径百分号解码后直接当作文件系统路径读取
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "" || r.URL.Path == "/" {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("No URL specified"))
		return
	}

	path := r.URL.Path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}

	w.Header().Set("Content-Type", ContentType(path))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// ContentType 按扩展名解析 Content-Type，大小写不敏感，
// 百分号编码和未编码的同一路径结果一致
func ContentType(path string) string {
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
