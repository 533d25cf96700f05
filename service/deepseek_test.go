package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeepSeekClient(baseURL string) *DeepSeekClient {
	return &DeepSeekClient{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Model:      "deepseek-chat",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}
}

func completionResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	}
}

func TestDeepSeekCompleteSuccess(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(completionResponse("**歌名：** 测试"))
	}))
	defer srv.Close()

	client := newTestDeepSeekClient(srv.URL)
	content, usage, err := client.Complete(context.Background(), "写一首歌", CompletionOptions{MaxTokens: 3000, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "**歌名：** 测试", content)
	require.NotNil(t, usage)
	assert.Equal(t, 30, usage.TotalTokens)

	assert.Equal(t, "deepseek-chat", gotReq.Model)
	assert.Equal(t, 3000, gotReq.MaxTokens)
	assert.Equal(t, 0.7, gotReq.Temperature)
	assert.False(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "写一首歌", gotReq.Messages[0].Content)
}

func TestDeepSeekCompleteDefaults(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(completionResponse("ok"))
	}))
	defer srv.Close()

	client := newTestDeepSeekClient(srv.URL)
	_, _, err := client.Complete(context.Background(), "hi", CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1500, gotReq.MaxTokens)
	assert.Equal(t, 0.8, gotReq.Temperature)
}

func TestDeepSeekCompleteRetryThenSucceed(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(completionResponse("第三次成功"))
	}))
	defer srv.Close()

	client := newTestDeepSeekClient(srv.URL)
	content, _, err := client.Complete(context.Background(), "hi", CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "第三次成功", content)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDeepSeekCompleteExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "upstream overloaded"},
		})
	}))
	defer srv.Close()

	client := newTestDeepSeekClient(srv.URL)
	_, _, err := client.Complete(context.Background(), "hi", CompletionOptions{})
	require.Error(t, err)
	// 最多尝试 3 次，且透出上游错误信息
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "upstream overloaded")
	assert.Contains(t, err.Error(), "500")
}

func TestDeepSeekCompleteRetryDelaysIncrease(t *testing.T) {
	var times []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestDeepSeekClient(srv.URL)
	client.RetryDelay = 30 * time.Millisecond
	_, _, err := client.Complete(context.Background(), "hi", CompletionOptions{})
	require.Error(t, err)
	require.Len(t, times, 3)

	// 间隔线性递增：第二次等待约为第一次的两倍
	gap1 := times[1].Sub(times[0])
	gap2 := times[2].Sub(times[1])
	assert.GreaterOrEqual(t, gap1, 30*time.Millisecond)
	assert.GreaterOrEqual(t, gap2, 60*time.Millisecond)
	assert.Greater(t, gap2, gap1)
}

func TestDeepSeekCompleteMissingKey(t *testing.T) {
	client := &DeepSeekClient{}
	_, _, err := client.Complete(context.Background(), "hi", CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "密钥未配置")
}

func TestDeepSeekCompleteContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestDeepSeekClient(srv.URL)
	client.RetryDelay = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := client.Complete(ctx, "hi", CompletionOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeepSeekCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	client := newTestDeepSeekClient(srv.URL)
	client.MaxRetries = 0
	_, _, err := client.Complete(context.Background(), "hi", CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "返回结果为空")
}
