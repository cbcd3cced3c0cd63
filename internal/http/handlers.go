package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/godilite/workforce-intel/internal/service"
)

const (
	requestTimeout = 10 * time.Second
	rebuildTimeout = 5 * time.Minute
)

type DashboardService interface {
	CurrentRunID(ctx context.Context) (string, error)
	DashboardStats(ctx context.Context, period int) (*service.DashboardView, error)
	ListPartners(ctx context.Context) ([]service.PartnerSummary, error)
	Partner(ctx context.Context, name string, period int) (*service.PartnerView, error)
	Engineer(ctx context.Context, email string, period int) (*service.EngineerView, error)
	ListTDLs(ctx context.Context) ([]string, error)
	TDLStats(ctx context.Context, tdl string, period int) (*service.TDLStats, error)
	TopEngineers(ctx context.Context, limit, period int) ([]service.TopEngineer, error)
	TopPartners(ctx context.Context, limit int) ([]service.PartnerSummary, error)
	Rebuild(ctx context.Context) (*service.RebuildResult, error)
}

type Handler struct {
	Dashboard DashboardService
	Validator *validator.Validate
	Logger    *zap.Logger
}

type periodQuery struct {
	Period int `form:"period" validate:"gte=0"`
}

type topQuery struct {
	Period int `form:"period" validate:"gte=0"`
	Limit  int `form:"limit" validate:"gte=0,lte=1000"`
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// bindQuery parses and validates query parameters into dst, writing a 400 on
// failure.
func (h *Handler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		writeError(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid query parameters", err.Error())
		return false
	}
	if err := h.Validator.Struct(dst); err != nil {
		writeError(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid query parameters", err.Error())
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoSnapshot):
		writeError(c, http.StatusNotFound, "NO_DATA", "No dataset has been built yet", nil)
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidPeriod):
		writeError(c, http.StatusBadRequest, "INVALID_PERIOD", err.Error(), nil)
	case errors.Is(err, service.ErrRebuildFailed):
		h.Logger.Error("rebuild failed", zap.Error(err))
		writeError(c, http.StatusServiceUnavailable, "REBUILD_FAILED", "Rebuild failed", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out", nil)
	default:
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "INTERNAL", "Internal error", nil)
	}
}

func respond[T any](c *gin.Context, h *Handler, v T, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	runID, err := h.Dashboard.CurrentRunID(ctx)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "run_id": runID})
	case errors.Is(err, service.ErrNoSnapshot):
		c.JSON(http.StatusOK, gin.H{"status": "ok", "run_id": nil})
	default:
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
	}
}

func (h *Handler) DashboardStats(c *gin.Context) {
	var q periodQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	v, err := h.Dashboard.DashboardStats(ctx, q.Period)
	respond(c, h, v, err)
}

func (h *Handler) ListPartners(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	v, err := h.Dashboard.ListPartners(ctx)
	respond(c, h, gin.H{"partners": v}, err)
}

func (h *Handler) Partner(c *gin.Context) {
	var q periodQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	v, err := h.Dashboard.Partner(ctx, c.Param("name"), q.Period)
	respond(c, h, v, err)
}

func (h *Handler) Engineer(c *gin.Context) {
	var q periodQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	v, err := h.Dashboard.Engineer(ctx, strings.ToLower(c.Param("email")), q.Period)
	respond(c, h, v, err)
}

func (h *Handler) ListTDLs(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	v, err := h.Dashboard.ListTDLs(ctx)
	respond(c, h, gin.H{"tdls": v}, err)
}

func (h *Handler) TDLStats(c *gin.Context) {
	var q periodQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	v, err := h.Dashboard.TDLStats(ctx, c.Param("tdl"), q.Period)
	respond(c, h, v, err)
}

func (h *Handler) TopEngineers(c *gin.Context) {
	var q topQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	v, err := h.Dashboard.TopEngineers(ctx, q.Limit, q.Period)
	respond(c, h, gin.H{"engineers": v}, err)
}

func (h *Handler) TopPartners(c *gin.Context) {
	var q topQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	v, err := h.Dashboard.TopPartners(ctx, q.Limit)
	respond(c, h, gin.H{"partners": v}, err)
}

func (h *Handler) Rebuild(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), rebuildTimeout)
	defer cancel()
	v, err := h.Dashboard.Rebuild(ctx)
	respond(c, h, v, err)
}
