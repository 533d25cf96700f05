package service

import (
	"regexp"
	"strings"
)

// StructureVariant 一个结构版本：整体结构说明 + 主歌画面示例
type StructureVariant struct {
	Structure string   `json:"structure"`
	Examples  []string `json:"examples"`
}

// SongStructure AI 给出的创作简报：歌名备选 + A/B 两个结构版本。
// Complete 标记解析是否拿到了可用的完整结果，模型输出偏离模板时为 false，
// 调用方据此决定是否让任务失败而不是带着空字段继续。
type SongStructure struct {
	SongTitles []string         `json:"songTitles"`
	VersionA   StructureVariant `json:"versionA"`
	VersionB   StructureVariant `json:"versionB"`
	Complete   bool             `json:"complete"`
}

// CompleteLyrics 完整歌词解析结果
type CompleteLyrics struct {
	Title  string `json:"title"`
	Lyrics string `json:"lyrics"`
}

// 模型输出并不保证遵守模板，所有正则缺失时返回空字段而不是报错
var (
	titleSectionRe    = regexp.MustCompile(`(?s)\*\*歌名备选：\*\*\s*(.*?)(?:\*\*Version|$)`)
	titleLineRe       = regexp.MustCompile(`^\d+\.\s*`)
	versionAStructRe  = regexp.MustCompile(`(?s)\*\*Version A（故事型）结构：\*\*\s*(.*?)(?:\*\*Version A 主歌画面举例|$)`)
	versionAExampleRe = regexp.MustCompile(`(?s)\*\*Version A 主歌画面举例：\*\*\s*(.*?)(?:\*\*Version B|$)`)
	versionBStructRe  = regexp.MustCompile(`(?s)\*\*Version B（情感型）结构：\*\*\s*(.*?)(?:\*\*Version B 主歌画面举例|$)`)
	versionBExampleRe = regexp.MustCompile(`(?s)\*\*Version B 主歌画面举例：\*\*\s*(.*)$`)
	verseSplitRe      = regexp.MustCompile(`主歌\d+：`)

	lyricsTitleRe = regexp.MustCompile(`\*\*歌名：\*\*\s*([^\n]+)`)
	lyricsBodyRe  = regexp.MustCompile(`(?s)\*\*完整歌词：\*\*\s*(.*)$`)
)

// ParseSongStructure 从模型自由文本中提取歌名备选和 A/B 结构。
// 纯函数，任何输入都不报错；缺失的段落留空
func ParseSongStructure(content string) SongStructure {
	var result SongStructure
	result.SongTitles = []string{}
	result.VersionA.Examples = []string{}
	result.VersionB.Examples = []string{}

	if m := titleSectionRe.FindStringSubmatch(content); m != nil {
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimSpace(line)
			if !titleLineRe.MatchString(line) {
				continue
			}
			title := titleLineRe.ReplaceAllString(line, "")
			title = strings.ReplaceAll(title, "（默认推荐）", "")
			title = strings.ReplaceAll(title, "《", "")
			title = strings.ReplaceAll(title, "》", "")
			title = strings.TrimSpace(title)
			if title != "" {
				result.SongTitles = append(result.SongTitles, title)
			}
		}
	}

	if m := versionAStructRe.FindStringSubmatch(content); m != nil {
		result.VersionA.Structure = strings.TrimSpace(m[1])
	}
	if m := versionAExampleRe.FindStringSubmatch(content); m != nil {
		result.VersionA.Examples = splitVerseExamples(m[1])
	}
	if m := versionBStructRe.FindStringSubmatch(content); m != nil {
		result.VersionB.Structure = strings.TrimSpace(m[1])
	}
	if m := versionBExampleRe.FindStringSubmatch(content); m != nil {
		result.VersionB.Examples = splitVerseExamples(m[1])
	}

	result.Complete = len(result.SongTitles) > 0 &&
		result.VersionA.Structure != "" &&
		result.VersionB.Structure != ""
	return result
}

// splitVerseExamples 按 "主歌N：" 标记切分示例段落
func splitVerseExamples(section string) []string {
	examples := []string{}
	loc := verseSplitRe.FindStringIndex(section)
	if loc == nil {
		return examples
	}
	// 第一个标记之前的说明文字不算示例
	parts := verseSplitRe.Split(section[loc[0]:], -1)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			examples = append(examples, part)
		}
	}
	return examples
}

// ParseCompleteLyrics 提取歌名和完整歌词。主标记缺失时逐行扫描备用标记，
// 歌名兜底为 "未命名歌曲"；歌词可能为空，调用方负责判定可用性
func ParseCompleteLyrics(content string) CompleteLyrics {
	var title, lyrics string

	if m := lyricsTitleRe.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}
	if m := lyricsBodyRe.FindStringSubmatch(content); m != nil {
		lyrics = strings.TrimSpace(m[1])
	}

	// 没有命中标准格式时逐行扫描备用格式
	if title == "" || lyrics == "" {
		var sb strings.Builder
		inLyrics := false
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "**歌名：**"):
				if title == "" {
					title = strings.TrimSpace(strings.TrimPrefix(line, "**歌名：**"))
				}
			case strings.HasPrefix(line, "歌名："):
				if title == "" {
					title = strings.TrimSpace(strings.TrimPrefix(line, "歌名："))
				}
			case strings.HasPrefix(line, "**完整歌词：**"), strings.HasPrefix(line, "完整歌词："):
				inLyrics = true
			case inLyrics && line != "":
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
		if lyrics == "" {
			lyrics = strings.TrimSpace(sb.String())
		}
	}

	if title == "" {
		title = "未命名歌曲"
	}
	return CompleteLyrics{Title: title, Lyrics: lyrics}
}
