package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupMainHandlers registers the main application endpoints
func SetupMainHandlers(router *gin.RouterGroup, config map[string]string) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "huntcore",
			"port":    config["port"],
		})
	})
}
