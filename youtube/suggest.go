package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// defaultSuggestURL YouTube 自动补全建议接口
const defaultSuggestURL = "https://suggestqueries-clients6.youtube.com/complete/search"

// Suggest 获取一个查询串的自动补全建议
func (c *Client) Suggest(ctx context.Context, query string) ([]string, error) {
	endpoint, err := url.Parse(c.suggestURL)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("client", "firefox")
	params.Set("q", query)
	params.Set("ds", "yt")
	params.Set("hl", "en")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求自动补全建议失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("自动补全接口状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取自动补全响应失败: %w", err)
	}

	return parseSuggestions(body)
}

// parseSuggestions 解析 [查询串, [建议...], ...] 形式的响应
func parseSuggestions(body []byte) ([]string, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, fmt.Errorf("解析自动补全响应失败: %w", err)
	}

	if len(parts) < 2 {
		return nil, fmt.Errorf("自动补全响应形态异常: %s", body)
	}

	var suggestions []string
	if err := json.Unmarshal(parts[1], &suggestions); err != nil {
		return nil, fmt.Errorf("解析建议列表失败: %w", err)
	}

	return suggestions, nil
}
