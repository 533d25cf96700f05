package models

import (
	"time"

	"gorm.io/gorm"
)

// UserAnswer 一条问卷答案（按轮次和题目 id 存储，仅作为提示词输入）
type UserAnswer struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID      string    `gorm:"column:user_id" json:"userId"`
	WorkID      string    `gorm:"column:work_id" json:"workId"`
	RoundNumber int       `gorm:"column:round_number" json:"roundNumber"`
	QuestionID  string    `gorm:"column:question_id" json:"questionId"`
	AnswerValue string    `gorm:"column:answer_value" json:"answerValue"`
	AnswerType  string    `gorm:"column:answer_type" json:"answerType"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}

func BatchCreateAnswers(db *gorm.DB, answers []UserAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return db.Create(&answers).Error
}

func GetAnswersByWorkID(db *gorm.DB, workID string) ([]UserAnswer, error) {
	var answers []UserAnswer
	if err := db.Where("work_id = ?", workID).Order("round_number ASC, created_at ASC").Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}
