package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/NachoToast/NachoMusic/bus"
	"github.com/NachoToast/NachoMusic/config"
	"github.com/NachoToast/NachoMusic/downloader"
	"github.com/NachoToast/NachoMusic/fileserver"
	"github.com/NachoToast/NachoMusic/model"
	"github.com/NachoToast/NachoMusic/reporter"
	"github.com/NachoToast/NachoMusic/search"
	"github.com/NachoToast/NachoMusic/ws"
	"github.com/NachoToast/NachoMusic/youtube"
)

// 主函数
func main() {
	// 设置日志
	log.SetOutput(os.Stdout)
	log.SetPrefix("[NachoMusic Extension] ")

	// 加载启动参数
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 创建事件总线
	eventBus := bus.New()

	// 建立到主应用的唯一连接
	log.Printf("连接到 %s", ws.ServerURL(cfg))
	conn, err := ws.Dial(cfg, eventBus)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// 创建错误上报工具，所有组件失败都经由它对外可见
	errorReporter := reporter.New(conn, cfg.ExtensionID)
	conn.SetReporter(errorReporter)
	eventBus.SetErrorHandler(func(err error) {
		errorReporter.Report(err, false)
	})

	// 创建 YouTube 提供方
	yt := youtube.NewClient()

	// 注册各个服务
	fileserver.New(conn).Register(eventBus)
	search.NewService(yt, yt, conn).Register(eventBus)
	downloader.NewService(yt, yt, conn, errorReporter).Register(eventBus)

	// 首次就绪时向主应用打个招呼
	eventBus.Once(model.Ready, func(json.RawMessage) error {
		conn.Log("Hello World!")
		return nil
	})

	// 阻塞读取消息，连接关闭即进程退出
	conn.Listen()
}
