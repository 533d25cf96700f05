package api

import (
	"net/http"

	"lovesong-server/config"

	"github.com/gin-gonic/gin"
)

// 提交音乐生成任务：POST /v1/api/music/generate
func GenerateMusic(c *gin.Context) {
	var req struct {
		Lyrics      string `json:"lyrics"`
		Title       string `json:"title"`
		MusicStyle  string `json:"musicStyle"`
		StylePrompt string `json:"stylePrompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Lyrics == "" || req.Title == "" || req.MusicStyle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要参数：歌词、歌名或音乐风格"})
		return
	}
	if config.AppConfig.Suno.APIKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "SunoAI API密钥未配置"})
		return
	}

	task, err := musicClient.Submit(c.Request.Context(), req.Lyrics, req.Title, req.MusicStyle, req.StylePrompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"taskId":  task.TaskID,
			"status":  task.Status,
			"message": "音乐生成任务已提交，请稍后查询状态",
		},
	})
}

// 查询音乐生成状态：GET /v1/api/music/status/:task_id
func GetMusicStatus(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少任务ID"})
		return
	}
	if config.AppConfig.Suno.APIKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "SunoAI API密钥未配置"})
		return
	}

	task, err := musicClient.Status(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"taskId":       task.TaskID,
			"status":       task.Status,
			"audioUrl":     task.AudioURL,
			"isCompleted":  task.IsCompleted(),
			"isProcessing": task.IsProcessing(),
		},
	})
}
