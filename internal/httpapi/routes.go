package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with every audit route mounted under
// /api/v1.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/stores", h.CreateStore)
		v1.GET("/stores", h.ListStores)
		v1.GET("/stores/:id", h.GetStore)
		v1.DELETE("/stores/:id", h.DeleteStore)
		v1.GET("/stores/:id/summary", h.GetStoreSummary)
		v1.GET("/stores/:id/ranking", h.GetRankingView)
		v1.GET("/stores/:id/reports", h.ListReports)
		v1.GET("/ranking", h.ListRanked)
		v1.GET("/insights", h.GetInsights)

		evaluator := v1.Group("", RequireEvaluator())
		evaluator.PUT("/stores/:id/evaluations/me", h.SubmitEvaluation)
		evaluator.GET("/stores/:id/evaluations/me", h.GetEvaluation)
		evaluator.DELETE("/stores/:id/evaluations/me", h.RetractEvaluation)
		evaluator.POST("/stores/:id/reports", h.ReportEvaluation)
	}

	return r
}
