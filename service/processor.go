package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"lovesong-server/config"
	"lovesong-server/models"

	"github.com/hibiken/asynq"
)

// WorkStore 作品记录的读写入口，编排器只通过它落库
type WorkStore interface {
	Get(id string) (models.Work, error)
	Update(id string, status string, upd models.WorkUpdate) error
}

// dbWorkStore 生产实现：MySQL + 状态缓存失效
type dbWorkStore struct{}

func NewDBWorkStore() WorkStore {
	return dbWorkStore{}
}

func (dbWorkStore) Get(id string) (models.Work, error) {
	return models.GetWorkByID(id)
}

func (dbWorkStore) Update(id string, status string, upd models.WorkUpdate) error {
	if err := models.UpdateWorkStatus(id, status, upd); err != nil {
		return err
	}
	InvalidateWorkStatus(id)
	return nil
}

// GenerationParams 一次生成任务的全部输入，随队列消息持久化
type GenerationParams struct {
	WorkID          string      `json:"work_id"`
	Round1          UserAnswers `json:"round1"`
	Round2          UserAnswers `json:"round2"`
	StyleID         string      `json:"style_id"`
	VocalType       string      `json:"vocal_type,omitempty"`
	SelectedTitle   string      `json:"selected_title,omitempty"`
	SelectedVersion string      `json:"selected_version,omitempty"`
}

// Processor 消费队列任务并驱动生成状态机：
// pending → generating（进度 10/30/50/70/90 为各步骤子状态）→ completed | failed
type Processor struct {
	Store   WorkStore
	LLM     TextGenerator
	Music   MusicGenerator
	Storage Uploader

	PollInterval time.Duration
	PollTimeout  time.Duration
}

func NewProcessor() *Processor {
	return &Processor{
		Store:        NewDBWorkStore(),
		LLM:          NewDeepSeekClient(),
		Music:        NewSunoClient(),
		Storage:      NewMinIOStorage(),
		PollInterval: 5 * time.Second,
		PollTimeout:  10 * time.Minute,
	}
}

// StartProcessor 启动任务消费者
func (p *Processor) StartProcessor(concurrency int) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     config.AppConfig.Redis.Addr,
			Password: config.AppConfig.Redis.Password,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeGenerateWork, p.HandleGenerateWork)

	log.Printf("Starting Work Processor with concurrency %d...", concurrency)
	go func() {
		if err := srv.Run(mux); err != nil {
			log.Fatalf("could not run server: %v", err)
		}
	}()
}

// HandleGenerateWork 核心处理逻辑
func (p *Processor) HandleGenerateWork(ctx context.Context, t *asynq.Task) error {
	var params GenerationParams
	if err := json.Unmarshal(t.Payload(), &params); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	work, err := p.Store.Get(params.WorkID)
	if err != nil {
		return fmt.Errorf("work not found: %v", err)
	}
	// 终态之后不再执行：重复投递/重启重投在这里变成幂等
	if models.IsTerminalStatus(work.Status) {
		log.Printf("Work %s already %s, skip", work.ID, work.Status)
		return nil
	}

	log.Printf("Processing Work: %s", work.ID)
	p.Run(ctx, params)
	// 业务失败已写入作品记录，不触发队列重试
	return nil
}

func (p *Processor) setStage(workID string, progress int, stage string, upd models.WorkUpdate) {
	upd.Progress = &progress
	upd.Stage = &stage
	if err := p.Store.Update(workID, models.WorkStatusGenerating, upd); err != nil {
		log.Printf("写入作品进度失败: %v", err)
	}
}

func (p *Processor) fail(workID string, stage string, cause error) {
	progress := 0
	msg := cause.Error()
	if err := p.Store.Update(workID, models.WorkStatusFailed, models.WorkUpdate{
		Progress:     &progress,
		Stage:        &stage,
		ErrorMessage: &msg,
	}); err != nil {
		log.Printf("写入失败状态失败: %v", err)
	}
	log.Printf("Work %s failed at %q: %v", workID, stage, cause)
}

// Run 按顺序执行六个步骤，每步执行前先把进度/阶段写入作品记录。
// 任一步失败立即终止：状态置 failed，进度归零，已产出的文件不回滚。
// 失败的作品不可续跑，需要重新创建作品从头生成
func (p *Processor) Run(ctx context.Context, params GenerationParams) {
	workID := params.WorkID

	// 第一步：生成歌名备选和结构设计
	p.setStage(workID, 10, "生成基础歌词中...", models.WorkUpdate{})

	structureRaw, _, err := p.LLM.Complete(ctx, BuildSongStructurePrompt(params.Round1), CompletionOptions{
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	if err != nil {
		p.fail(workID, "生成基础歌词失败", err)
		return
	}
	structure := ParseSongStructure(structureRaw)
	if !structure.Complete {
		p.fail(workID, "生成基础歌词失败", errors.New("模型输出缺少歌名备选或结构设计"))
		return
	}

	title := params.SelectedTitle
	if title == "" {
		title = structure.SongTitles[0]
	}
	version := params.SelectedVersion
	if version != "A" && version != "B" {
		version = "A"
	}

	// 第二步：生成完整歌词和歌名
	p.setStage(workID, 30, "生成完整歌词中...", models.WorkUpdate{})

	lyricsRaw, _, err := p.LLM.Complete(ctx, BuildCompleteLyricsPrompt(params.Round2, params.Round1, title, version, &structure), CompletionOptions{
		MaxTokens:   3000,
		Temperature: 0.7,
	})
	if err != nil {
		p.fail(workID, "生成完整歌词失败", err)
		return
	}
	parsed := ParseCompleteLyrics(lyricsRaw)
	if parsed.Lyrics == "" {
		p.fail(workID, "生成完整歌词失败", errors.New("模型输出中没有可用歌词"))
		return
	}

	// 第三步：上传歌词到对象存储
	p.setStage(workID, 50, "上传歌词文件中...", models.WorkUpdate{})

	lyricsURL, _, err := p.Storage.UploadLyrics(ctx, parsed.Lyrics, parsed.Title, workID)
	if err != nil {
		p.fail(workID, "上传歌词失败", err)
		return
	}

	// 第四步：提交音乐生成并等待完成（歌词产物随进度一并落库）
	p.setStage(workID, 70, "生成音乐音频中...", models.WorkUpdate{LyricsURL: &lyricsURL})

	style, ok := models.GetMusicStyleByID(params.StyleID)
	if !ok {
		p.fail(workID, "生成音乐失败", fmt.Errorf("未找到音乐风格: %s", params.StyleID))
		return
	}
	vocal := params.VocalType
	if vocal == "" {
		vocal = RecommendedVocalType(params.Round1)
	}
	stylePrompt := BuildSunoPrompt(parsed.Lyrics, parsed.Title, style, vocal)

	task, err := p.Music.Submit(ctx, parsed.Lyrics, parsed.Title, style.ID, stylePrompt)
	if err != nil {
		p.fail(workID, "生成音乐失败", err)
		return
	}

	final, err := p.waitForMusic(ctx, task)
	if err != nil {
		p.fail(workID, "生成音乐失败", err)
		return
	}

	// 第五步：转存音频到对象存储
	p.setStage(workID, 90, "上传音频文件中...", models.WorkUpdate{})

	objectName := fmt.Sprintf("audio/%s/%d_%s.mp3", workID, time.Now().UnixMilli(), sanitizeFileName(parsed.Title))
	audioURL, audioSize, err := p.Storage.UploadFromURL(ctx, final.AudioURL, objectName)
	if err != nil {
		p.fail(workID, "上传音频失败", err)
		return
	}

	// 第六步：完成
	progress := 100
	stage := "生成完成"
	if err := p.Store.Update(workID, models.WorkStatusCompleted, models.WorkUpdate{
		Progress:      &progress,
		Stage:         &stage,
		Title:         &parsed.Title,
		LyricsURL:     &lyricsURL,
		AudioURL:      &audioURL,
		AudioDuration: &final.Duration,
		AudioSize:     &audioSize,
	}); err != nil {
		log.Printf("写入完成状态失败: %v", err)
		return
	}
	log.Printf("Work %s completed successfully", workID)
}

// waitForMusic 轮询音乐任务直到终态。轮询节奏归编排器管，客户端只做单次查询
func (p *Processor) waitForMusic(ctx context.Context, task MusicTask) (MusicTask, error) {
	if task.IsCompleted() && task.AudioURL != "" {
		return task, nil
	}
	if task.IsFailed() {
		return task, fmt.Errorf("音乐生成失败: %s", task.Status)
	}

	interval := p.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	pollTimeout := p.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Minute
	}

	timeout := time.After(pollTimeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			return MusicTask{}, errors.New("polling timeout")
		case <-ctx.Done():
			return MusicTask{}, fmt.Errorf("polling canceled: %v", ctx.Err())
		case <-ticker.C:
			cur, err := p.Music.Status(ctx, task.TaskID)
			if err != nil {
				// 单次查询失败继续轮询，网络抖动不终止任务
				log.Printf("轮询音乐状态失败(重试中): %v", err)
				continue
			}
			if cur.IsCompleted() {
				if cur.AudioURL == "" {
					return MusicTask{}, errors.New("任务完成但缺少音频地址")
				}
				return cur, nil
			}
			if cur.IsFailed() {
				return MusicTask{}, fmt.Errorf("音乐生成失败: %s", cur.Status)
			}
			// 其他状态继续轮询
		}
	}
}
