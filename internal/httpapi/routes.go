package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches all engine routes under /v1.
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/command", h.HandleCommand)
		v1.POST("/signals", h.HandleSignals)
		v1.POST("/revert", h.HandleRevert)

		users := v1.Group("/users/:user_id")
		{
			users.GET("/layout", h.HandleLayout)
			users.GET("/settings", h.HandleGetSettings)
			users.PUT("/settings", h.HandlePutSettings)
			users.POST("/tiers", h.HandleToggleTier)
			users.POST("/insights/enable", h.HandleEnableInsights)
			users.GET("/insights/:type", h.HandleGetInsight)
			users.GET("/export", h.HandleExport)
		}
	}
}
