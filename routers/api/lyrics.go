package api

import (
	"net/http"

	"lovesong-server/service"

	"github.com/gin-gonic/gin"
)

// 生成歌名备选和结构设计：POST /v1/api/ai/generate-structure
func GenerateStructure(c *gin.Context) {
	var req struct {
		Answers *service.UserAnswers `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Answers == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户答案数据"})
		return
	}

	validationErrors := service.ValidateUserAnswers(*req.Answers, 1)
	if len(validationErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "答案验证失败", "details": validationErrors})
		return
	}

	prompt := service.BuildSongStructurePrompt(*req.Answers)
	content, usage, err := llmClient.Complete(c.Request.Context(), prompt, service.CompletionOptions{
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	structure := service.ParseSongStructure(content)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    structure,
		"usage":   usage,
	})
}

// 生成完整歌词和歌名：POST /v1/api/ai/generate-complete-lyrics
func GenerateCompleteLyrics(c *gin.Context) {
	var req struct {
		Round1Answers   *service.UserAnswers   `json:"round1Answers"`
		Round2Answers   *service.UserAnswers   `json:"round2Answers"`
		SelectedTitle   string                 `json:"selectedTitle"`
		SelectedVersion string                 `json:"selectedVersion"`
		SongStructure   *service.SongStructure `json:"songStructure"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Round1Answers == nil || req.Round2Answers == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户答案数据"})
		return
	}
	if req.SelectedTitle == "" || req.SelectedVersion == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请先选择歌名和版本"})
		return
	}

	prompt := service.BuildCompleteLyricsPrompt(*req.Round2Answers, *req.Round1Answers, req.SelectedTitle, req.SelectedVersion, req.SongStructure)
	content, usage, err := llmClient.Complete(c.Request.Context(), prompt, service.CompletionOptions{
		MaxTokens:   3000,
		Temperature: 0.7,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	parsed := service.ParseCompleteLyrics(content)

	tone := req.Round1Answers.SongTone
	if tone == "" {
		tone = "gentle"
	}
	mood := req.Round1Answers.CoreTheme
	if mood == "" {
		mood = "love"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"lyrics": parsed.Lyrics,
			"title":  parsed.Title,
			"metadata": gin.H{
				"style":  tone,
				"mood":   mood,
				"length": len([]rune(parsed.Lyrics)),
			},
		},
		"usage": usage,
	})
}
