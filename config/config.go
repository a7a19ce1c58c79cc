package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config 扩展进程的启动参数，进程启动时解析一次，之后不可变
type Config struct {
	Port        int    // Neutralino 服务器端口
	AccessToken string // 调用原生 API 的访问令牌
	ExtensionID string // 扩展标识
}

// Load 使用 pflag 和 Viper 从启动参数和环境变量加载配置。
// 三个参数缺一不可，缺失任何一个立即返回错误
func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	// 配置命令行参数，与 Neutralino 传入扩展进程的参数名保持一致
	flags := pflag.NewFlagSet("config", pflag.ContinueOnError)
	flags.Int("nl-port", 0, "指定 Neutralino 服务器端口")
	flags.String("nl-token", "", "指定访问令牌")
	flags.String("nl-extension-id", "", "指定扩展标识")

	// 尝试解析命令行参数，忽略错误
	flags.Parse(args)

	// 可选的 .env 文件，失败不报错
	godotenv.Load()

	v := viper.New()

	// 设置配置项默认值
	v.SetDefault("nl_port", 0)
	v.SetDefault("nl_token", "")
	v.SetDefault("nl_extension_id", "")

	// 将命令行参数绑定到viper
	v.BindPFlag("nl_port", flags.Lookup("nl-port"))
	v.BindPFlag("nl_token", flags.Lookup("nl-token"))
	v.BindPFlag("nl_extension_id", flags.Lookup("nl-extension-id"))

	// 支持从环境变量读取配置
	v.AutomaticEnv()
	v.BindEnv("nl_port", "NL_PORT")
	v.BindEnv("nl_token", "NL_TOKEN")
	v.BindEnv("nl_extension_id", "NL_EXTENSION_ID")

	// 创建配置对象
	config := &Config{
		Port:        v.GetInt("nl_port"),
		AccessToken: v.GetString("nl_token"),
		ExtensionID: v.GetString("nl_extension_id"),
	}

	// 检查必须的配置项
	if config.Port == 0 {
		return nil, fmt.Errorf("未指定端口，请通过命令行参数 --nl-port 或环境变量 NL_PORT 设置")
	}

	if config.AccessToken == "" {
		return nil, fmt.Errorf("未指定访问令牌，请通过命令行参数 --nl-token 或环境变量 NL_TOKEN 设置")
	}

	if config.ExtensionID == "" {
		return nil, fmt.Errorf("未指定扩展标识，请通过命令行参数 --nl-extension-id 或环境变量 NL_EXTENSION_ID 设置")
	}

	return config, nil
}
