package models

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"lovesong-server/config"

	_ "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *sql.DB
var GormDB *gorm.DB

func InitDB() {
	if config.AppConfig == nil {
		log.Fatal("config.AppConfig is nil, call config.InitConfig first")
	}
	dsn := config.AppConfig.MySQL.DSN
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("打开数据库失败: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}

	DB = db
	GormDB, err = gorm.Open(mysql.New(mysql.Config{
		Conn: DB,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("GORM 初始化失败: %v", err)
	}

	log.Println("数据库连接成功 (Native SQL + GORM)")

	// 自动建表（读取 doc/sql/lovesong.sql）
	b, err := os.ReadFile("doc/sql/lovesong.sql")
	if err != nil {
		log.Printf("读取 SQL 文件失败（跳过建表）: %v", err)
		return
	}
	sqls := strings.Split(string(b), ";")
	for _, s := range sqls {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := DB.Exec(s); err != nil {
			log.Printf("执行建表语句失败: %v ; sql: %s", err, s)
		}
	}
}

// Work CRUD
func CreateWork(w *Work) error {
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	_, err := DB.Exec(
		`INSERT INTO user_works (id, user_id, title, style_id, status, generation_progress, generation_stage, error_message, audio_url, lyrics_url, audio_duration, audio_size, is_public, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.Title, w.StyleID, w.Status, w.GenerationProgress, w.GenerationStage, w.ErrorMessage, w.AudioURL, w.LyricsURL, w.AudioDuration, w.AudioSize, w.IsPublic, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

const workColumns = `id, user_id, title, style_id, status, generation_progress, generation_stage, error_message, audio_url, lyrics_url, audio_duration, audio_size, is_public, created_at, updated_at, completed_at`

func scanWork(scan func(dest ...interface{}) error) (Work, error) {
	var w Work
	var stage, errMsg, audioURL, lyricsURL sql.NullString
	var duration, size sql.NullInt64
	var completedAt sql.NullTime
	err := scan(&w.ID, &w.UserID, &w.Title, &w.StyleID, &w.Status, &w.GenerationProgress,
		&stage, &errMsg, &audioURL, &lyricsURL, &duration, &size, &w.IsPublic,
		&w.CreatedAt, &w.UpdatedAt, &completedAt)
	if err != nil {
		return w, err
	}
	w.GenerationStage = stage.String
	w.ErrorMessage = errMsg.String
	w.AudioURL = audioURL.String
	w.LyricsURL = lyricsURL.String
	w.AudioDuration = int(duration.Int64)
	w.AudioSize = size.Int64
	if completedAt.Valid {
		t := completedAt.Time
		w.CompletedAt = &t
	}
	return w, nil
}

func GetWorkByID(id string) (Work, error) {
	row := DB.QueryRow(`SELECT `+workColumns+` FROM user_works WHERE id = ?`, id)
	return scanWork(row.Scan)
}

func ListWorksByUser(userID string, limit, offset int) ([]Work, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := DB.Query(`SELECT `+workColumns+` FROM user_works WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Work
	for rows.Next() {
		w, err := scanWork(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, w)
	}
	return res, rows.Err()
}

// UpdateWorkStatus 更新作品的状态/进度/阶段/产物等（未提供的字段保持原值，last-writer-wins）
func UpdateWorkStatus(id string, status string, upd WorkUpdate) error {
	sets := []string{"status = ?"}
	args := []interface{}{status}

	if upd.Progress != nil {
		sets = append(sets, "generation_progress = ?")
		args = append(args, *upd.Progress)
	}
	if upd.Stage != nil {
		sets = append(sets, "generation_stage = ?")
		args = append(args, *upd.Stage)
	}
	if upd.ErrorMessage != nil {
		sets = append(sets, "error_message = ?")
		args = append(args, *upd.ErrorMessage)
	}
	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.AudioURL != nil {
		sets = append(sets, "audio_url = ?")
		args = append(args, *upd.AudioURL)
	}
	if upd.LyricsURL != nil {
		sets = append(sets, "lyrics_url = ?")
		args = append(args, *upd.LyricsURL)
	}
	if upd.AudioDuration != nil {
		sets = append(sets, "audio_duration = ?")
		args = append(args, *upd.AudioDuration)
	}
	if upd.AudioSize != nil {
		sets = append(sets, "audio_size = ?")
		args = append(args, *upd.AudioSize)
	}
	// 完成时间只在成功终态盖章
	if status == WorkStatusCompleted {
		sets = append(sets, "completed_at = ?")
		args = append(args, time.Now())
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now())

	query := fmt.Sprintf("UPDATE user_works SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	_, err := DB.Exec(query, args...)
	return err
}
