package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"budgetly/config"
	"budgetly/models"
)

// ChatMessage OpenAI 兼容的消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer 一次性补全，便于在业务层替换为测试桩
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage, jsonMode bool) (string, error)
}

// AIClient 调用 OpenAI 兼容的 /chat/completions 接口
type AIClient struct {
	model       models.AIModel
	temperature float64
	httpClient  *http.Client
}

// NewAIClient 根据模型配置创建客户端
func NewAIClient(model models.AIModel, cfg config.AIConfig) *AIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &AIClient{
		model:       model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Model          string            `json:"model"`
	Messages       []ChatMessage     `json:"messages"`
	Stream         bool              `json:"stream"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
		Delta   ChatMessage `json:"delta"`
	} `json:"choices"`
}

func (c *AIClient) post(ctx context.Context, body completionRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	url := strings.TrimRight(c.model.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.model.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求AI服务失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("AI服务返回错误: %d %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

// Complete 非流式补全，jsonMode 时要求模型只输出 JSON
func (c *AIClient) Complete(ctx context.Context, messages []ChatMessage, jsonMode bool) (string, error) {
	body := completionRequest{
		Model:       c.model.Name,
		Messages:    messages,
		Temperature: c.temperature,
	}
	if jsonMode {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}
	resp, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("解析AI响应失败: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("AI响应为空")
	}
	return out.Choices[0].Message.Content, nil
}

// Stream 流式补全，每个增量回调一次 onDelta，返回完整文本
// 兼容接口可能不发送 [DONE]，EOF 同样视为正常结束。ctx 取消时返回 ctx.Err()。
func (c *AIClient) Stream(ctx context.Context, messages []ChatMessage, onDelta func(string)) (string, error) {
	resp, err := c.post(ctx, completionRequest{
		Model:       c.model.Name,
		Messages:    messages,
		Stream:      true,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	var text strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return text.String(), err
		}

		line, err := reader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return text.String(), ctxErr
			}
			return text.String(), fmt.Errorf("读取AI响应失败: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		line = bytes.TrimSpace(line)
		if data, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			data = bytes.TrimSpace(data)
			if string(data) == "[DONE]" {
				return text.String(), nil
			}
			var chunk completionResponse
			if json.Unmarshal(data, &chunk) == nil && len(chunk.Choices) > 0 {
				if delta := chunk.Choices[0].Delta.Content; delta != "" {
					text.WriteString(delta)
					onDelta(delta)
				}
			}
		}

		if eof {
			return text.String(), nil
		}
	}
}
