package routers

import (
	"lovesong-server/routers/api"

	"github.com/gin-gonic/gin"
)

func InitRouter() *gin.Engine {
	api.InitClients()

	r := gin.Default()
	v1 := r.Group("/v1/api")
	{
		v1.POST("/ai/generate-structure", api.GenerateStructure)
		v1.POST("/ai/generate-complete-lyrics", api.GenerateCompleteLyrics)
		v1.POST("/music/generate", api.GenerateMusic)
		v1.GET("/music/status/:task_id", api.GetMusicStatus)
		v1.POST("/works/generate", api.GenerateWork)
		v1.GET("/works", api.ListWorks)
		v1.GET("/works/:work_id/status", api.GetWorkStatus)
		v1.GET("/music-styles", api.GetMusicStyles)
	}
	r.GET("/works/:work_id/progress/wss", api.WorkProgressWebSocket)
	return r
}
