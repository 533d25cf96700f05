package models

import "time"

// 作品状态（生成流水线在系统中统一使用这些状态）
const (
	// pending: 作品已创建，尚未被执行器取走
	WorkStatusPending = "pending"
	// generating: 生成流水线执行中，细粒度进度见 generation_progress / generation_stage
	WorkStatusGenerating = "generating"
	WorkStatusCompleted  = "completed"
	WorkStatusFailed     = "failed"
)

// IsTerminalStatus 终态之后不再允许流水线写入
func IsTerminalStatus(status string) bool {
	return status == WorkStatusCompleted || status == WorkStatusFailed
}

type Work struct {
	ID                 string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID             string     `gorm:"column:user_id" json:"userId"`
	Title              string     `json:"title"`
	StyleID            string     `gorm:"column:style_id" json:"styleId"`
	Status             string     `json:"status"`
	GenerationProgress int        `gorm:"column:generation_progress" json:"generationProgress"`
	GenerationStage    string     `gorm:"column:generation_stage" json:"generationStage"`
	ErrorMessage       string     `gorm:"column:error_message" json:"errorMessage,omitempty"`
	AudioURL           string     `gorm:"column:audio_url" json:"audioUrl,omitempty"`
	LyricsURL          string     `gorm:"column:lyrics_url" json:"lyricsUrl,omitempty"`
	AudioDuration      int        `gorm:"column:audio_duration" json:"audioDuration,omitempty"`
	AudioSize          int64      `gorm:"column:audio_size" json:"audioSize,omitempty"`
	IsPublic           bool       `gorm:"column:is_public" json:"isPublic"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

// WorkUpdate 部分更新：nil 字段保持数据库原值
type WorkUpdate struct {
	Progress      *int
	Stage         *string
	ErrorMessage  *string
	Title         *string
	AudioURL      *string
	LyricsURL     *string
	AudioDuration *int
	AudioSize     *int64
}

// 强制指定表名为 "user_works"
func (Work) TableName() string {
	return "user_works"
}
