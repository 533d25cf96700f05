package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"lovesong-server/models"
	"lovesong-server/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// 创建作品并启动生成流水线：POST /v1/api/works/generate
// 请求立即返回 workId，生成进度通过状态端点或 WebSocket 观察
func GenerateWork(c *gin.Context) {
	var req struct {
		UserID          string               `json:"userId"`
		Round1Answers   *service.UserAnswers `json:"round1Answers"`
		Round2Answers   *service.UserAnswers `json:"round2Answers"`
		MusicStyleID    string               `json:"musicStyleId"`
		VocalType       string               `json:"vocalType"`
		SelectedTitle   string               `json:"selectedTitle"`
		SelectedVersion string               `json:"selectedVersion"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" || req.Round1Answers == nil || req.Round2Answers == nil || req.MusicStyleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必要参数"})
		return
	}

	// 两轮答案一起校验，一次性返回全部问题
	round1Errors := service.ValidateUserAnswers(*req.Round1Answers, 1)
	round2Errors := service.ValidateUserAnswers(*req.Round2Answers, 2)
	if len(round1Errors) > 0 || len(round2Errors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "答案验证失败",
			"details": gin.H{
				"round1": round1Errors,
				"round2": round2Errors,
			},
		})
		return
	}

	if _, ok := models.GetMusicStyleByID(req.MusicStyleID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到指定的音乐风格"})
		return
	}

	work := models.Work{
		ID:                 uuid.NewString(),
		UserID:             req.UserID,
		Title:              "生成中...",
		StyleID:            req.MusicStyleID,
		Status:             models.WorkStatusGenerating,
		GenerationProgress: 0,
		GenerationStage:    "开始生成基础歌词",
	}
	if err := models.CreateWork(&work); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建作品记录失败: " + err.Error()})
		return
	}

	// 答案落库只用于留痕，失败不阻塞生成
	answers := append(
		answerRows(req.UserID, work.ID, 1, *req.Round1Answers),
		answerRows(req.UserID, work.ID, 2, *req.Round2Answers)...,
	)
	if err := models.BatchCreateAnswers(models.GormDB, answers); err != nil {
		log.Printf("保存用户答案失败: %v", err)
	}

	if err := service.EnqueueGenerateWork(service.GenerationParams{
		WorkID:          work.ID,
		Round1:          *req.Round1Answers,
		Round2:          *req.Round2Answers,
		StyleID:         req.MusicStyleID,
		VocalType:       req.VocalType,
		SelectedTitle:   req.SelectedTitle,
		SelectedVersion: req.SelectedVersion,
	}); err != nil {
		log.Printf("生成任务入队失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成任务入队失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"workId":  work.ID,
			"status":  work.Status,
			"message": "开始生成作品，请稍候...",
		},
	})
}

// answerRows 把一轮答案摊平成留痕记录，列表值存 JSON，空值跳过
func answerRows(userID, workID string, round int, answers service.UserAnswers) []models.UserAnswer {
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	var rows []models.UserAnswer
	now := time.Now()
	for questionID, value := range fields {
		var answerValue, answerType string
		switch v := value.(type) {
		case string:
			if v == "" {
				continue
			}
			answerValue = v
			answerType = "text"
		case float64:
			if v == 0 {
				continue
			}
			answerValue = strconv.FormatFloat(v, 'f', -1, 64)
			answerType = "number"
		case []interface{}:
			if len(v) == 0 {
				continue
			}
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			answerValue = string(b)
			answerType = "list"
		default:
			continue
		}
		rows = append(rows, models.UserAnswer{
			ID:          uuid.NewString(),
			UserID:      userID,
			WorkID:      workID,
			RoundNumber: round,
			QuestionID:  questionID,
			AnswerValue: answerValue,
			AnswerType:  answerType,
			CreatedAt:   now,
		})
	}
	return rows
}

// 状态查询入口，测试时可替换
var fetchWork = service.GetWorkCached

// 查询作品状态：GET /v1/api/works/:work_id/status
func GetWorkStatus(c *gin.Context) {
	workID := c.Param("work_id")
	work, err := fetchWork(c.Request.Context(), workID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "未找到作品"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询作品失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":          work.ID,
			"status":      work.Status,
			"progress":    work.GenerationProgress,
			"stage":       work.GenerationStage,
			"error":       work.ErrorMessage,
			"audioUrl":    work.AudioURL,
			"lyricsUrl":   work.LyricsURL,
			"title":       work.Title,
			"createdAt":   work.CreatedAt,
			"completedAt": work.CompletedAt,
		},
	})
}

// 作品列表：GET /v1/api/works?user_id=&limit=&offset=
func ListWorks(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 user_id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	works, err := models.ListWorksByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询作品列表失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": works})
}

// 作品进度 WebSocket 推送（以数据库为来源：先读取 DB，然后循环轮询 DB 并推送变化）
func WorkProgressWebSocket(c *gin.Context) {
	workID := c.Param("work_id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "WebSocket升级失败"})
		return
	}
	defer conn.Close()

	work, err := models.GetWorkByID(workID)
	if err != nil {
		conn.WriteJSON(map[string]interface{}{"error": "work not found"})
		return
	}
	_ = conn.WriteJSON(work)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	prevStatus := work.Status
	prevProgress := work.GenerationProgress

	for range ticker.C {
		cur, err := models.GetWorkByID(workID)
		if err != nil {
			continue
		}

		if cur.Status != prevStatus || cur.GenerationProgress != prevProgress {
			if err := conn.WriteJSON(cur); err != nil {
				break
			}
			prevStatus = cur.Status
			prevProgress = cur.GenerationProgress
		}

		if models.IsTerminalStatus(cur.Status) {
			// 发送最终状态后关闭连接
			_ = conn.WriteJSON(cur)
			break
		}
	}
}
