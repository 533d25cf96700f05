package api

import (
	"net/http"

	"lovesong-server/models"

	"github.com/gin-gonic/gin"
)

// 音乐风格目录（静态，只读）：GET /v1/api/music-styles
func GetMusicStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"styles": models.ListMusicStyles(),
	})
}
