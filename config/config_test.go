package config

import "testing"

func TestLoadAllArgs(t *testing.T) {
	cfg, err := load([]string{"--nl-port=36080", "--nl-token=abc123", "--nl-extension-id=nacho-extension"})
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Port != 36080 {
		t.Errorf("端口解析错误: 期望 36080, 实际 %d", cfg.Port)
	}
	if cfg.AccessToken != "abc123" {
		t.Errorf("访问令牌解析错误: %s", cfg.AccessToken)
	}
	if cfg.ExtensionID != "nacho-extension" {
		t.Errorf("扩展标识解析错误: %s", cfg.ExtensionID)
	}
}

func TestLoadMissingArgs(t *testing.T) {
	cases := [][]string{
		{},
		{"--nl-token=abc123", "--nl-extension-id=nacho-extension"},
		{"--nl-port=36080", "--nl-extension-id=nacho-extension"},
		{"--nl-port=36080", "--nl-token=abc123"},
	}

	for _, args := range cases {
		if _, err := load(args); err == nil {
			t.Errorf("参数缺失时应返回错误: %v", args)
		}
	}
}
