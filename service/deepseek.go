package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"lovesong-server/config"
)

// CompletionOptions 单次补全调用的参数
type CompletionOptions struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// Usage 上游返回的 token 用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TextGenerator 文本生成客户端，由编排器和 API 层共用
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, *Usage, error)
}

// DeepSeekClient 调用 chat-completion 接口。每次调用最多尝试 3 次（2 次重试），
// 重试间隔线性递增（2s、4s），单次尝试默认 120s 超时
type DeepSeekClient struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	MaxRetries int
	RetryDelay time.Duration
}

func NewDeepSeekClient() *DeepSeekClient {
	cfg := config.AppConfig.DeepSeek
	return &DeepSeekClient{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
		MaxRetries: 2,
		RetryDelay: 2 * time.Second,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete 发送提示词并返回模型原文。所有失败（网络、非 2xx、超时）都走同一条重试路径，
// 耗尽重试后返回最后一次的错误
func (c *DeepSeekClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, *Usage, error) {
	if c.APIKey == "" {
		return "", nil, errors.New("DeepSeek API密钥未配置")
	}

	model := opts.Model
	if model == "" {
		model = c.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.8
	}

	reqBody := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stream:      false,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("marshal request failed: %w", err)
	}

	attempts := c.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, usage, err := c.doRequest(ctx, jsonBody)
		if err == nil {
			return content, usage, nil
		}
		lastErr = err
		log.Printf("[DeepSeek] 第 %d 次尝试失败: %v", attempt, err)
		if attempt < attempts {
			delay := time.Duration(attempt) * c.RetryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", nil, ctx.Err()
			}
		}
	}
	return "", nil, lastErr
}

func (c *DeepSeekClient) doRequest(ctx context.Context, jsonBody []byte) (string, *Usage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	var data chatResponse
	if resp.StatusCode != http.StatusOK {
		_ = json.Unmarshal(body, &data)
		if data.Error != nil && data.Error.Message != "" {
			return "", nil, fmt.Errorf("API请求失败: %d %s", resp.StatusCode, data.Error.Message)
		}
		return "", nil, fmt.Errorf("API请求失败: %d %s", resp.StatusCode, resp.Status)
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", nil, fmt.Errorf("decode response failed: %w", err)
	}
	if len(data.Choices) == 0 {
		return "", nil, errors.New("上游返回结果为空")
	}
	return data.Choices[0].Message.Content, data.Usage, nil
}
