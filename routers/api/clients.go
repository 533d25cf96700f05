package api

import (
	"lovesong-server/service"
)

// API 层直接调用的外部客户端，测试时可替换
var (
	llmClient   service.TextGenerator
	musicClient service.MusicGenerator
)

func InitClients() {
	llmClient = service.NewDeepSeekClient()
	musicClient = service.NewSunoClient()
}
