package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSunoClient(baseURL string) *SunoClient {
	return &SunoClient{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestSunoSubmit(t *testing.T) {
	var gotReq sunoSubmitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/suno/submit/music", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]string{"id": "task-123", "status": "queued"})
	}))
	defer srv.Close()

	client := newTestSunoClient(srv.URL)
	task, err := client.Submit(context.Background(), "第一行歌词", "海边的约定", "ballad", "Chinese pop ballad")
	require.NoError(t, err)
	assert.Equal(t, "task-123", task.TaskID)
	assert.Equal(t, "queued", task.Status)
	assert.True(t, task.IsProcessing())

	assert.Equal(t, "第一行歌词", gotReq.Prompt)
	assert.Equal(t, "chirp-v4", gotReq.MV)
	assert.Equal(t, "海边的约定", gotReq.Title)
	assert.Equal(t, "ballad", gotReq.Tags)
	assert.Equal(t, "Chinese pop ballad", gotReq.GPTDescriptionPrompt)
}

func TestSunoSubmitTaskIDField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 部分网关用 task_id 字段且不带 status
		json.NewEncoder(w).Encode(map[string]string{"task_id": "task-456"})
	}))
	defer srv.Close()

	task, err := newTestSunoClient(srv.URL).Submit(context.Background(), "歌词", "歌名", "tags", "")
	require.NoError(t, err)
	assert.Equal(t, "task-456", task.TaskID)
	assert.Equal(t, "processing", task.Status)
}

func TestSunoSubmitAlreadyCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 命中缓存的网关会直接返回终态结果，时长必须跟着带回来
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":        "task-789",
			"status":    "completed",
			"audio_url": "https://cdn.example.com/a.mp3",
			"duration":  185,
		})
	}))
	defer srv.Close()

	task, err := newTestSunoClient(srv.URL).Submit(context.Background(), "歌词", "歌名", "tags", "")
	require.NoError(t, err)
	assert.True(t, task.IsCompleted())
	assert.Equal(t, "https://cdn.example.com/a.mp3", task.AudioURL)
	assert.Equal(t, 185, task.Duration)
}

func TestSunoSubmitMissingTaskID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	}))
	defer srv.Close()

	_, err := newTestSunoClient(srv.URL).Submit(context.Background(), "歌词", "歌名", "tags", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task id")
}

func TestSunoSubmitUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"message":"quota exceeded"}`))
	}))
	defer srv.Close()

	_, err := newTestSunoClient(srv.URL).Submit(context.Background(), "歌词", "歌名", "tags", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSunoSubmitMissingKey(t *testing.T) {
	client := &SunoClient{}
	_, err := client.Submit(context.Background(), "歌词", "歌名", "tags", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "密钥未配置")
}

func TestSunoStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suno/status/task-123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "completed",
			"audio_url": "https://cdn.example.com/a.mp3",
			"duration":  185,
		})
	}))
	defer srv.Close()

	task, err := newTestSunoClient(srv.URL).Status(context.Background(), "task-123")
	require.NoError(t, err)
	assert.Equal(t, "task-123", task.TaskID)
	assert.True(t, task.IsCompleted())
	assert.Equal(t, "https://cdn.example.com/a.mp3", task.AudioURL)
	assert.Equal(t, 185, task.Duration)
}

func TestSunoStatusUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	task, err := newTestSunoClient(srv.URL).Status(context.Background(), "task-123")
	require.NoError(t, err)
	assert.Equal(t, "unknown", task.Status)
	assert.False(t, task.IsCompleted())
	assert.False(t, task.IsFailed())
	assert.False(t, task.IsProcessing())
}

func TestMusicTaskStatusNormalization(t *testing.T) {
	for _, s := range []string{"completed", "success", "succeeded"} {
		assert.True(t, MusicTask{Status: s}.IsCompleted(), s)
	}
	for _, s := range []string{"failed", "error"} {
		assert.True(t, MusicTask{Status: s}.IsFailed(), s)
	}
	for _, s := range []string{"processing", "pending", "queued", "running"} {
		assert.True(t, MusicTask{Status: s}.IsProcessing(), s)
	}
}
