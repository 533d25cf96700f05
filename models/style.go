package models

import (
	"encoding/json"
	"log"
	"os"
)

// MusicStyle 静态风格目录条目，运行时只读
type MusicStyle struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	EnglishName        string   `json:"englishName"`
	Mood               string   `json:"mood"`
	Tempo              string   `json:"tempo"`
	SunoPromptTemplate string   `json:"sunoPromptTemplate"`
	VocalSuggestions   []string `json:"vocalSuggestions"`
}

var musicStyles []MusicStyle

// 内置目录，data/musicStyles.json 存在时被覆盖
var defaultMusicStyles = []MusicStyle{
	{
		ID:                 "ballad",
		Name:               "抒情流行",
		EnglishName:        "Pop Ballad",
		Mood:               "温柔深情",
		Tempo:              "slow",
		SunoPromptTemplate: "Chinese pop ballad, emotional piano and strings, [VOCAL_TYPE] vocals, slow tempo",
		VocalSuggestions:   []string{"gentle female", "warm male"},
	},
	{
		ID:                 "folk",
		Name:               "民谣",
		EnglishName:        "Folk",
		Mood:               "质朴怀旧",
		Tempo:              "medium",
		SunoPromptTemplate: "Chinese folk song, acoustic guitar, [VOCAL_TYPE] vocals, storytelling mood",
		VocalSuggestions:   []string{"melancholic female", "warm male"},
	},
	{
		ID:                 "rnb",
		Name:               "R&B",
		EnglishName:        "R&B",
		Mood:               "浪漫律动",
		Tempo:              "medium",
		SunoPromptTemplate: "Chinese R&B love song, smooth groove, [VOCAL_TYPE] vocals, romantic atmosphere",
		VocalSuggestions:   []string{"passionate male", "gentle female"},
	},
	{
		ID:                 "rock",
		Name:               "摇滚",
		EnglishName:        "Rock",
		Mood:               "坚定有力",
		Tempo:              "fast",
		SunoPromptTemplate: "Chinese rock anthem, electric guitar, [VOCAL_TYPE] vocals, powerful chorus",
		VocalSuggestions:   []string{"strong male", "powerful female"},
	},
}

// InitMusicStyles 加载风格目录（文件缺失时退回内置目录）
func InitMusicStyles(path string) {
	musicStyles = defaultMusicStyles
	if path == "" {
		path = "data/musicStyles.json"
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Printf("读取风格目录失败（使用内置目录）: %v", err)
		return
	}
	var payload struct {
		Styles []MusicStyle `json:"styles"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		log.Printf("解析风格目录失败（使用内置目录）: %v", err)
		return
	}
	if len(payload.Styles) > 0 {
		musicStyles = payload.Styles
	}
	log.Printf("风格目录加载完成，共 %d 条", len(musicStyles))
}

func ListMusicStyles() []MusicStyle {
	if musicStyles == nil {
		return defaultMusicStyles
	}
	return musicStyles
}

func GetMusicStyleByID(id string) (MusicStyle, bool) {
	for _, s := range ListMusicStyles() {
		if s.ID == id {
			return s, true
		}
	}
	return MusicStyle{}, false
}
