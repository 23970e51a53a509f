package transport

import (
	"github.com/ds124wfegd/image-editor/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(editorHandler *EditorHandler) *gin.Engine {
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(60))

	router.POST("/upload", editorHandler.UploadImage)
	router.POST("/preview-adjustments", editorHandler.PreviewAdjustments)
	router.POST("/adjust-brightness", editorHandler.AdjustBrightness)
	router.POST("/compress", editorHandler.CompressImage)
	router.POST("/crop", editorHandler.CropImage)
	router.GET("/download/:id", editorHandler.DownloadImage)
	router.DELETE("/reset/:id", editorHandler.ResetSession)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "image-editor-service",
		})
	})
	return router
}
