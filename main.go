package main

import (
	"fmt"

	"lovesong-server/config"
	"lovesong-server/models"
	"lovesong-server/routers"
	"lovesong-server/service"
)

func main() {
	config.InitConfig()
	fmt.Println("Server starting on port", config.AppConfig.Server.Port)
	models.InitDB()
	fmt.Println("Database initialized")

	models.InitMusicStyles(config.AppConfig.Styles.CatalogPath)

	service.InitQueue()
	fmt.Println("Queue initialized")

	service.InitCache()

	service.InitMinIO()
	fmt.Println("MinIO initialized")

	processor := service.NewProcessor()
	processor.StartProcessor(5)

	r := routers.InitRouter()
	r.Run(config.AppConfig.Server.Port)
}
