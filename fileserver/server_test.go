package fileserver

import (
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/NachoToast/NachoMusic/bus"
	"github.com/NachoToast/NachoMusic/model"
)

type fakeSender struct {
	events []model.EventName
	data   []interface{}
}

func (f *fakeSender) Send(event model.EventName, data interface{}) error {
	f.events = append(f.events, event)
	f.data = append(f.data, data)
	return nil
}

func TestContentType(t *testing.T) {
	mp4 := "Users/Nacho/Music/NachoMusic/Alan Walker - Faded.mp4"
	if got := ContentType(mp4); got != "video/mp4" {
		t.Errorf("mp4 类型解析错误: %s", got)
	}
	if got := ContentType(url.QueryEscape(mp4)); got != "video/mp4" {
		t.Errorf("编码后的 mp4 类型解析错误: %s", got)
	}

	mp3 := "Users/Nacho/Music/NachoMusic/Alan Walker - Faded.mp3"
	if got := ContentType(mp3); got != "audio/mpeg" {
		t.Errorf("mp3 类型解析错误: %s", got)
	}
	if got := ContentType(url.QueryEscape(mp3)); got != "audio/mpeg" {
		t.Errorf("编码后的 mp3 类型解析错误: %s", got)
	}

	if got := ContentType("/some/file.MP4"); got != "video/mp4" {
		t.Errorf("扩展名应大小写不敏感: %s", got)
	}
	if got := ContentType("/some/file.txt"); got != "application/octet-stream" {
		t.Errorf("其他扩展名应为二进制流: %s", got)
	}
	if got := ContentType("/some/file"); got != "application/octet-stream" {
		t.Errorf("无扩展名应为二进制流: %s", got)
	}
}

func TestHandleRequestServesFile(t *testing.T) {
	s := New(&fakeSender{})

	path := filepath.Join(t.TempDir(), "song.mp4")
	if err := os.WriteFile(path, []byte("视频字节"), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}

	req := httptest.NewRequest("GET", "http://127.0.0.1"+path, nil)
	rec := httptest.NewRecorder()
	s.handleRequest(rec, req)

	if rec.Code != 200 {
		t.Fatalf("状态码错误: %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "video/mp4" {
		t.Errorf("Content-Type 错误: %s", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != "视频字节" {
		t.Errorf("响应体错误: %s", rec.Body.String())
	}
}

func TestHandleRequestMissingFile(t *testing.T) {
	s := New(&fakeSender{})

	path := filepath.Join(t.TempDir(), "不存在.mp3")
	req := httptest.NewRequest("GET", "http://127.0.0.1"+path, nil)
	rec := httptest.NewRecorder()
	s.handleRequest(rec, req)

	if rec.Code != 404 {
		t.Errorf("缺失文件应返回 404: %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("404 响应体应为空: %s", rec.Body.String())
	}
}

func TestHandleRequestNoPath(t *testing.T) {
	s := New(&fakeSender{})

	req := httptest.NewRequest("GET", "http://127.0.0.1/", nil)
	rec := httptest.NewRecorder()
	s.handleRequest(rec, req)

	if rec.Code != 400 {
		t.Errorf("无路径请求应返回 400: %d", rec.Code)
	}
}

// 两次就绪信号（模拟 UI 重新加载）只绑定一次端口，但通告两次同一端口
func TestReadyBindsOnceAnnouncesTwice(t *testing.T) {
	sender := &fakeSender{}
	s := New(sender)
	b := bus.New()

	s.Register(b)

	b.Emit(model.Ready, nil)
	firstPort := s.Port()
	if firstPort == 0 {
		t.Fatal("首次就绪后应已绑定端口")
	}
	defer s.listener.Close()

	b.Emit(model.Ready, nil)

	if s.Port() != firstPort {
		t.Errorf("端口在进程生命周期内应保持稳定: %d → %d", firstPort, s.Port())
	}

	if len(sender.events) != 2 {
		t.Fatalf("应通告两次端口: %d", len(sender.events))
	}
	for i, event := range sender.events {
		if event != model.FileServerInfo {
			t.Errorf("通告事件名错误: %s", event)
		}
		if sender.data[i] != firstPort {
			t.Errorf("通告端口值错误: %v", sender.data[i])
		}
	}
}
