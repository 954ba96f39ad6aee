package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API under /api/v1 plus a health check.
// uploadMiddleware runs in front of the upload route only.
func RegisterRoutes(r *gin.Engine, documents *DocumentHandler, returns *ReturnHandler, rules *RulesHandler, uploadMiddleware ...gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "tax-slip-engine",
		})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/documents/interpret", documents.Interpret)
		v1.GET("/documents/:id", documents.Get)
		v1.PATCH("/documents/:id", documents.Update)
		v1.DELETE("/documents/:id", documents.Delete)

		taxpayer := v1.Group("/taxpayers/:taxpayerId/years/:year")
		taxpayer.POST("/documents", append(uploadMiddleware, documents.Upload)...)
		taxpayer.GET("/documents", documents.List)
		taxpayer.POST("/preview", returns.Preview)

		v1.POST("/returns/preview", returns.PreviewStateless)

		v1.GET("/tax-rules/:year", rules.Year)
		v1.GET("/tax-rules/:year/provinces/:province", rules.MarginalRates)
	}
}
