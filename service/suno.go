package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"lovesong-server/config"
)

// MusicTask 音乐生成任务的当前状态
type MusicTask struct {
	TaskID   string `json:"taskId"`
	Status   string `json:"status"`
	AudioURL string `json:"audioUrl,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// IsCompleted 上游对终态的叫法不统一，统一在这里归一
func (t MusicTask) IsCompleted() bool {
	return t.Status == "completed" || t.Status == "success" || t.Status == "succeeded"
}

func (t MusicTask) IsFailed() bool {
	return t.Status == "failed" || t.Status == "error"
}

func (t MusicTask) IsProcessing() bool {
	return t.Status == "processing" || t.Status == "pending" || t.Status == "queued" || t.Status == "running"
}

// MusicGenerator 音乐生成客户端。Submit 提交任务，Status 查询一次状态；
// 轮询节奏和终止由调用方负责，客户端自身不带轮询循环
type MusicGenerator interface {
	Submit(ctx context.Context, lyrics, title, tags, stylePrompt string) (MusicTask, error)
	Status(ctx context.Context, taskID string) (MusicTask, error)
}

// SunoClient 对接 Suno 兼容的音乐生成 API
type SunoClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewSunoClient() *SunoClient {
	cfg := config.AppConfig.Suno
	return &SunoClient{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type sunoSubmitRequest struct {
	Prompt               string `json:"prompt"`
	MV                   string `json:"mv"`
	Title                string `json:"title"`
	Tags                 string `json:"tags"`
	GPTDescriptionPrompt string `json:"gpt_description_prompt,omitempty"`
}

type sunoResponse struct {
	ID       string `json:"id"`
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	AudioURL string `json:"audio_url"`
	Duration int    `json:"duration"`
}

// Submit 提交歌词+风格任务，返回任务 id
func (c *SunoClient) Submit(ctx context.Context, lyrics, title, tags, stylePrompt string) (MusicTask, error) {
	if c.APIKey == "" {
		return MusicTask{}, errors.New("SunoAI API密钥未配置")
	}

	reqData := sunoSubmitRequest{
		Prompt:               lyrics,
		MV:                   "chirp-v4",
		Title:                title,
		Tags:                 tags,
		GPTDescriptionPrompt: stylePrompt,
	}
	jsonBody, err := json.Marshal(reqData)
	if err != nil {
		return MusicTask{}, fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/suno/submit/music", bytes.NewReader(jsonBody))
	if err != nil {
		return MusicTask{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return MusicTask{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return MusicTask{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return MusicTask{}, fmt.Errorf("SunoAI API请求失败: %d %s", resp.StatusCode, string(body))
	}

	var result sunoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return MusicTask{}, fmt.Errorf("decode response failed: %w", err)
	}

	taskID := result.ID
	if taskID == "" {
		taskID = result.TaskID
	}
	if taskID == "" {
		return MusicTask{}, errors.New("response missing task id")
	}
	status := result.Status
	if status == "" {
		status = "processing"
	}
	return MusicTask{TaskID: taskID, Status: status, AudioURL: result.AudioURL, Duration: result.Duration}, nil
}

// Status 查询一次任务状态
func (c *SunoClient) Status(ctx context.Context, taskID string) (MusicTask, error) {
	if c.APIKey == "" {
		return MusicTask{}, errors.New("SunoAI API密钥未配置")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/suno/status/"+taskID, nil)
	if err != nil {
		return MusicTask{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return MusicTask{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return MusicTask{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return MusicTask{}, fmt.Errorf("状态检查失败: %d %s", resp.StatusCode, string(body))
	}

	var result sunoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return MusicTask{}, fmt.Errorf("decode response failed: %w", err)
	}

	status := result.Status
	if status == "" {
		status = "unknown"
	}
	return MusicTask{TaskID: taskID, Status: status, AudioURL: result.AudioURL, Duration: result.Duration}, nil
}
