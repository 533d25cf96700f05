package service

import (
	"fmt"
	"strings"

	"lovesong-server/models"
)

// UserAnswers 两轮问卷答案的扁平映射，仅作为提示词输入
type UserAnswers struct {
	// 第一轮：关系背景
	RecipientNickname string   `json:"recipientNickname"`
	Relationship      string   `json:"relationship"`
	MetYear           int      `json:"metYear"`
	KeyMoments        []string `json:"keyMoments"`
	MemoryScenes      []string `json:"memoryScenes"`
	CoreTheme         string   `json:"coreTheme"`
	PrivateCode       string   `json:"privateCode"`
	SongTone          string   `json:"songTone"`
	AvoidList         string   `json:"avoidList"`

	// 第二轮：告白内容
	CoreConfession string   `json:"coreConfession"`
	MustImages     []string `json:"mustImages"`
	ChorusVow      string   `json:"chorusVow"`
	VerseFocus     string   `json:"verseFocus"`
	FactsLimit     string   `json:"factsLimit"`
	MoodAdjectives []string `json:"moodAdjectives"`
	AvoidConfirm   string   `json:"avoidConfirm"`
}

var relationshipMap = map[string]string{
	"couple":   "情侣",
	"spouse":   "夫妻",
	"fiance":   "未婚夫妻",
	"crush":    "暗恋对象",
	"partners": "伴侣",
}

var themeMap = map[string]string{
	"guard":     "守护与陪伴",
	"gratitude": "感恩与珍惜",
	"reconcile": "和解与理解",
	"confess":   "告白与表白",
	"rekindle":  "重燃与新生",
	"promise":   "承诺与誓言",
	"miss":      "思念与牵挂",
}

var toneMap = map[string]string{
	"gentle":     "温柔细腻",
	"passionate": "热烈深情",
	"nostalgic":  "怀旧感伤",
	"firm":       "坚定有力",
	"playful":    "俏皮活泼",
}

var vowMap = map[string]string{
	"standBy":      "不离不弃的陪伴",
	"throughStorm": "风雨同舟的坚持",
	"longTime":     "来日方长的期待",
	"growOld":      "白头到老的承诺",
	"againstWorld": "与世界对抗的勇气",
}

var focusMap = map[string]string{
	"memoryDetails":  "回忆中的具体细节",
	"herCharacter":   "对方的性格特点",
	"growthTogether": "共同成长的历程",
	"dailyLife":      "日常生活的烟火气",
}

func mapOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "、")
}

func strOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ValidateUserAnswers 校验某一轮答案的完整性。收集全部错误而非遇错即返，调用方可一次性展示
func ValidateUserAnswers(answers UserAnswers, round int) []string {
	var errs []string
	switch round {
	case 1:
		if answers.RecipientNickname == "" {
			errs = append(errs, "称呼/昵称不能为空")
		}
		if answers.Relationship == "" {
			errs = append(errs, "关系类型不能为空")
		}
		if len(answers.MemoryScenes) < 2 {
			errs = append(errs, "至少需要提供2个回忆场景")
		}
		if answers.CoreTheme == "" {
			errs = append(errs, "核心主题不能为空")
		}
		if answers.SongTone == "" {
			errs = append(errs, "歌曲基调不能为空")
		}
	case 2:
		if answers.CoreConfession == "" {
			errs = append(errs, "核心告白句不能为空")
		}
		if len(answers.MustImages) < 3 {
			errs = append(errs, "必须提供3个意象或细节")
		}
		if answers.ChorusVow == "" {
			errs = append(errs, "副歌誓言类型不能为空")
		}
		if answers.VerseFocus == "" {
			errs = append(errs, "主歌重点不能为空")
		}
		if len(answers.MoodAdjectives) < 3 {
			errs = append(errs, "必须提供3个氛围形容词")
		}
	}
	return errs
}

// BuildSongStructurePrompt 第一轮采集 → 歌名备选和结构设计模板
func BuildSongStructurePrompt(answers UserAnswers) string {
	metYear := "未指定"
	if answers.MetYear > 0 {
		metYear = fmt.Sprintf("%d", answers.MetYear)
	}
	theme := mapOr(themeMap, answers.CoreTheme, "未指定")
	tone := mapOr(toneMap, answers.SongTone, "未指定")

	var b strings.Builder
	b.WriteString("你是一位专业的中文歌词创作AI，请根据以下用户信息提供歌名备选和歌词结构设计：\n\n")
	b.WriteString("## 用户信息\n")
	fmt.Fprintf(&b, "- 称呼对象：%s\n", strOr(answers.RecipientNickname, "未指定"))
	fmt.Fprintf(&b, "- 关系：%s\n", mapOr(relationshipMap, answers.Relationship, "未指定"))
	fmt.Fprintf(&b, "- 相识年份：%s\n", metYear)
	fmt.Fprintf(&b, "- 重要节点：%s\n", joinOr(answers.KeyMoments, "无"))
	fmt.Fprintf(&b, "- 回忆场景：%s\n", joinOr(answers.MemoryScenes, "无"))
	fmt.Fprintf(&b, "- 核心主题：%s\n", theme)
	fmt.Fprintf(&b, "- 专属暗号：%s\n", strOr(answers.PrivateCode, "无"))
	fmt.Fprintf(&b, "- 歌曲基调：%s\n", tone)
	fmt.Fprintf(&b, "- 避免内容：%s\n\n", strOr(answers.AvoidList, "无"))

	b.WriteString("## 创作要求\n")
	b.WriteString("请提供以下三个部分：\n\n")
	b.WriteString("### 1. 歌名备选（10个不同方向）\n")
	fmt.Fprintf(&b, "每个歌名4-8字，体现%s，语言%s，避免使用用户指定的敏感词汇。\n\n", theme, mapOr(toneMap, answers.SongTone, "温柔细腻"))
	b.WriteString("### 2. 歌词整体结构设计（2个版本）\n")
	b.WriteString("**Version A（故事型）**：基于用户的具体回忆场景设计，体现时间线或情感发展。\n")
	b.WriteString("**Version B（情感型）**：基于核心主题和情感层次设计，体现情感深度和变化。\n\n")
	b.WriteString("### 3. 主歌画面举例\n")
	b.WriteString("为每个版本提供2-3个主歌的具体画面示例，每段4行，每行8-12字，融入用户的回忆场景和细节。\n\n")

	b.WriteString("## 输出格式\n")
	b.WriteString("请严格按照以下格式输出，不要添加其他内容：\n\n")
	b.WriteString("**歌名备选：**\n")
	b.WriteString("1. [歌名1]（默认推荐）\n2. [歌名2]\n3. [歌名3]\n4. [歌名4]\n5. [歌名5]\n6. [歌名6]\n7. [歌名7]\n8. [歌名8]\n9. [歌名9]\n10. [歌名10]\n\n")
	b.WriteString("**Version A（故事型）结构：**\n[详细结构说明，包含各个部分的安排和情感发展]\n\n")
	b.WriteString("**Version A 主歌画面举例：**\n主歌1：[具体歌词示例，4行，每行8-12字]\n主歌2：[具体歌词示例，4行，每行8-12字]\n\n")
	b.WriteString("**Version B（情感型）结构：**\n[详细结构说明，包含情感层次和表达方式]\n\n")
	b.WriteString("**Version B 主歌画面举例：**\n主歌1：[具体歌词示例，4行，每行8-12字]\n主歌2：[具体歌词示例，4行，每行8-12字]\n\n")
	b.WriteString("请开始创作：")
	return b.String()
}

// BuildCompleteLyricsPrompt 第二轮采集 + 已选歌名/版本 → 完整歌词生成模板
func BuildCompleteLyricsPrompt(round2, round1 UserAnswers, selectedTitle, selectedVersion string, structure *SongStructure) string {
	metYear := "未指定"
	if round1.MetYear > 0 {
		metYear = fmt.Sprintf("%d", round1.MetYear)
	}

	var b strings.Builder
	b.WriteString("你是一位专业的中文歌词创作AI，请根据用户信息创作完整歌词：\n\n")
	b.WriteString("## 用户故事背景\n")
	fmt.Fprintf(&b, "- 称呼对象：%s\n", strOr(round1.RecipientNickname, "未指定"))
	fmt.Fprintf(&b, "- 关系：%s\n", mapOr(relationshipMap, round1.Relationship, "未指定"))
	fmt.Fprintf(&b, "- 相识年份：%s\n", metYear)
	fmt.Fprintf(&b, "- 重要节点：%s\n", joinOr(round1.KeyMoments, "无"))
	fmt.Fprintf(&b, "- 回忆场景：%s\n", joinOr(round1.MemoryScenes, "无"))
	fmt.Fprintf(&b, "- 核心主题：%s\n", mapOr(themeMap, round1.CoreTheme, "未指定"))
	fmt.Fprintf(&b, "- 歌曲基调：%s\n\n", mapOr(toneMap, round1.SongTone, "未指定"))

	b.WriteString("## 已确定的歌名和结构\n")
	fmt.Fprintf(&b, "- 歌名：%s（必须使用这个歌名）\n", strOr(selectedTitle, "未选择"))
	fmt.Fprintf(&b, "- 版本：%s\n\n", strOr(selectedVersion, "未选择"))

	if structure != nil {
		var variant StructureVariant
		switch selectedVersion {
		case "A":
			variant = structure.VersionA
		case "B":
			variant = structure.VersionB
		}
		if variant.Structure != "" {
			fmt.Fprintf(&b, "**Version %s 结构：**\n%s\n\n", selectedVersion, variant.Structure)
		}
		if len(variant.Examples) > 0 {
			fmt.Fprintf(&b, "**Version %s 主歌示例：**\n%s\n\n", selectedVersion, strings.Join(variant.Examples, "\n\n"))
		}
	}

	vow := mapOr(vowMap, round2.ChorusVow, "未指定")
	focus := mapOr(focusMap, round2.VerseFocus, "未指定")

	b.WriteString("## 歌词创作要求\n")
	fmt.Fprintf(&b, "- 核心告白句：%s\n", strOr(round2.CoreConfession, "未指定"))
	fmt.Fprintf(&b, "- 必须意象：%s\n", joinOr(round2.MustImages, "无"))
	fmt.Fprintf(&b, "- 副歌誓言：%s\n", vow)
	fmt.Fprintf(&b, "- 主歌重点：%s\n", focus)
	fmt.Fprintf(&b, "- 氛围形容词：%s\n", joinOr(round2.MoodAdjectives, "无"))
	fmt.Fprintf(&b, "- 避免内容：%s\n\n", strOr(round2.AvoidConfirm, "无"))

	b.WriteString("## 输出格式要求\n")
	b.WriteString("请严格按照以下格式输出，不要添加任何其他内容：\n\n")
	fmt.Fprintf(&b, "**歌名：**\n%s\n\n", selectedTitle)
	b.WriteString("**完整歌词：**\n")
	fmt.Fprintf(&b, "请按照选中的%s版本结构来创作完整歌词，每行歌词8-12字，确保结构完整、情感连贯，必须包含核心告白句和指定意象。\n\n", strOr(selectedVersion, "A"))
	b.WriteString("请开始创作：")
	return b.String()
}

// BuildSunoPrompt 歌词+歌名+音乐风格 → 音频生成风格提示词
func BuildSunoPrompt(lyrics, songTitle string, style models.MusicStyle, vocalType string) string {
	if vocalType == "" {
		vocalType = "gentle female"
	}
	stylePrompt := strings.ReplaceAll(style.SunoPromptTemplate, "[VOCAL_TYPE]", vocalType)

	var b strings.Builder
	b.WriteString(stylePrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "**歌名：** %s\n\n", songTitle)
	fmt.Fprintf(&b, "**歌词：**\n%s\n\n", lyrics)
	b.WriteString("**特殊要求：**\n")
	b.WriteString("- 确保歌词与音乐风格完美匹配\n")
	b.WriteString("- 演唱要体现歌词的情感深度\n")
	fmt.Fprintf(&b, "- 音乐编排要突出%s的特色\n", style.Name)
	b.WriteString("- 整体效果要专业、感人、易记")
	return b.String()
}

// RecommendedVocalType 根据歌曲基调推荐演唱类型
func RecommendedVocalType(answers UserAnswers) string {
	switch answers.SongTone {
	case "gentle":
		return "gentle female"
	case "passionate":
		return "passionate male"
	case "nostalgic":
		return "melancholic female"
	case "firm":
		return "strong male"
	case "playful":
		return "cheerful female"
	}
	return "gentle female"
}
