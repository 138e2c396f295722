package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/godilite/store-audit/internal/ranking"
	"github.com/godilite/store-audit/internal/service"
)

const defaultRequestTimeout = 10 * time.Second

// Handler serves the audit REST API.
type Handler struct {
	audit   AuditService
	logger  *zap.Logger
	timeout time.Duration
}

func NewHandler(audit AuditService, logger *zap.Logger, timeout time.Duration) *Handler {
	if audit == nil {
		panic("nil AuditService provided to NewHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{
		audit:   audit,
		logger:  logger.Named("http-handler"),
		timeout: timeout,
	}
}

type createStoreRequest struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	Category string `json:"category"`
}

type submitEvaluationRequest struct {
	Answers map[int]int `json:"answers"`
	Comment string      `json:"comment"`
}

type reportEvaluationRequest struct {
	EvaluatorID string `json:"evaluator_id"`
	Reason      string `json:"reason"`
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// respondError writes the JSON error body for err.
func (h *Handler) respondError(c *gin.Context, ctx context.Context, op string, err error) {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		h.logger.Warn("request timeout", zap.String("op", op))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	case errors.Is(ctx.Err(), context.Canceled):
		// Client went away; nobody reads the body.
		c.Status(499)
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStoreNotFound), errors.Is(err, service.ErrEvaluationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAggregationUnavailable):
		h.logger.Warn("aggregation unavailable", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store summary is temporarily unavailable, try again"})
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}

func (h *Handler) CreateStore(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	store, err := h.audit.CreateStore(ctx, service.CreateStoreInput{Name: req.Name, City: req.City, Category: req.Category})
	if err != nil {
		h.respondError(c, ctx, "create store", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"store": newStoreResponse(store, ranking.Classify(store.Summary))})
}

func (h *Handler) ListStores(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	stores, err := h.audit.ListStores(ctx)
	if err != nil {
		h.respondError(c, ctx, "list stores", err)
		return
	}
	out := make([]storeResponse, len(stores))
	for i, s := range stores {
		out[i] = newStoreResponse(s, ranking.Classify(s.Summary))
	}
	c.JSON(http.StatusOK, gin.H{"stores": out})
}

func (h *Handler) GetStore(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	store, err := h.audit.GetStore(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, ctx, "get store", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": newStoreResponse(store, ranking.Classify(store.Summary))})
}

func (h *Handler) DeleteStore(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.audit.DeleteStore(ctx, c.Param("id")); err != nil {
		h.respondError(c, ctx, "delete store", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetStoreSummary(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	summary, err := h.audit.GetStoreSummary(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, ctx, "get summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": newSummaryResponse(summary)})
}

func (h *Handler) GetRankingView(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	view, err := h.audit.GetRankingView(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, ctx, "get ranking", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": newViewResponse(view)})
}

func (h *Handler) SubmitEvaluation(c *gin.Context) {
	var req submitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	res, err := h.audit.SubmitEvaluation(ctx, service.SubmitEvaluationInput{
		StoreID:     c.Param("id"),
		EvaluatorID: evaluatorFrom(c),
		Answers:     req.Answers,
		Comment:     req.Comment,
	})
	if err != nil {
		h.respondError(c, ctx, "submit evaluation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"evaluation": newEvaluationResponse(res.Evaluation),
		"summary":    newSummaryResponse(res.Summary),
		"ranking":    newViewResponse(res.Ranking),
	})
}

func (h *Handler) GetEvaluation(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	e, err := h.audit.GetEvaluation(ctx, c.Param("id"), evaluatorFrom(c))
	if err != nil {
		h.respondError(c, ctx, "get evaluation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluation": newEvaluationResponse(e)})
}

func (h *Handler) RetractEvaluation(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	summary, err := h.audit.RetractEvaluation(ctx, c.Param("id"), evaluatorFrom(c))
	if err != nil {
		h.respondError(c, ctx, "retract evaluation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": newSummaryResponse(summary),
		"ranking": newViewResponse(ranking.Classify(summary)),
	})
}

func (h *Handler) ReportEvaluation(c *gin.Context) {
	var req reportEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	report, err := h.audit.ReportEvaluation(ctx, service.ReportInput{
		StoreID:     c.Param("id"),
		EvaluatorID: req.EvaluatorID,
		ReportedBy:  evaluatorFrom(c),
		Reason:      req.Reason,
	})
	if err != nil {
		h.respondError(c, ctx, "report evaluation", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": newReportResponse(report)})
}

func (h *Handler) ListReports(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	reports, err := h.audit.ListReports(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, ctx, "list reports", err)
		return
	}
	out := make([]reportResponse, len(reports))
	for i, r := range reports {
		out[i] = newReportResponse(r)
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

// ListRanked accepts repeated store_id, reviewed_only and limit query
// parameters.
func (h *Handler) ListRanked(c *gin.Context) {
	q := service.RankQuery{StoreIDs: c.QueryArray("store_id")}

	if raw := c.Query("reviewed_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reviewed_only must be a boolean"})
			return
		}
		q.ReviewedOnly = v
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		q.Limit = v
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	entries, err := h.audit.ListRanked(ctx, q)
	if err != nil {
		h.respondError(c, ctx, "list ranking", err)
		return
	}
	out := make([]rankedStoreResponse, len(entries))
	for i, e := range entries {
		out[i] = rankedStoreResponse{Rank: i + 1, storeResponse: newStoreResponse(e.Store, e.View)}
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

func (h *Handler) GetInsights(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	in, err := h.audit.GetInsights(ctx)
	if err != nil {
		h.respondError(c, ctx, "get insights", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": newInsightsResponse(in)})
}
