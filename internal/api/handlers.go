package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"statlab/app"
	"statlab/internal"
	"statlab/internal/errors"
)

// Services groups the page services the API exposes
type Services struct {
	Resampling  *app.ResamplingService
	Anova       *app.AnovaService
	Categorical *app.CategoricalService
	Retail      *app.RetailService
	Laptops     *app.LaptopService
	Mowers      *app.MowerService
}

// Handler serves the JSON API. Permutation runs take a slot from limiter,
// which the HTML pages share.
type Handler struct {
	services Services
	limiter  *app.RunLimiter
	hub      *ProgressHub
	logger   *internal.Logger
}

// NewHandler creates the API handler
func NewHandler(services Services, limiter *app.RunLimiter, hub *ProgressHub, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{
		services: services,
		limiter:  limiter,
		hub:      hub,
		logger:   logger.WithComponent("API"),
	}
}

// NewRouter builds the gin engine with every route under /api
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestID())
	h.Register(r.Group("/api"))
	return r
}

// Register mounts the routes on group
func (h *Handler) Register(group *gin.RouterGroup) {
	group.POST("/resampling", h.handleResampling)
	group.POST("/anova", h.handleAnova)
	group.POST("/categorical", h.handleCategorical)

	retail := group.Group("/retail")
	retail.GET("/businesses", h.handleBusinesses)
	retail.GET("/monthly", h.handleMonthly)
	retail.GET("/index", h.handleIndex)
	retail.GET("/growth", h.handleGrowth)
	retail.GET("/autocorrelation", h.handleAutocorrelation)
	retail.GET("/seasonality", h.handleSeasonality)

	group.GET("/laptops", h.handleLaptops)
	group.GET("/mowers", h.handleMowers)

	if h.hub != nil {
		group.GET("/progress", h.hub.HandleSSE)
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (h *Handler) handleResampling(c *gin.Context) {
	var req app.ResamplingRequest
	if !h.bind(c, &req) {
		return
	}
	req.Progress = h.progress(c)
	h.runTest(c, "resampling test failed", func(ctx context.Context) (interface{}, error) {
		return h.services.Resampling.Run(ctx, req)
	})
}

func (h *Handler) handleAnova(c *gin.Context) {
	var req app.AnovaRequest
	if !h.bind(c, &req) {
		return
	}
	req.Progress = h.progress(c)
	h.runTest(c, "anova test failed", func(ctx context.Context) (interface{}, error) {
		return h.services.Anova.Run(ctx, req)
	})
}

func (h *Handler) handleCategorical(c *gin.Context) {
	var req app.CategoricalRequest
	if !h.bind(c, &req) {
		return
	}
	req.Progress = h.progress(c)
	h.runTest(c, "categorical test failed", func(ctx context.Context) (interface{}, error) {
		return h.services.Categorical.Run(ctx, req)
	})
}

// runTest holds a limiter slot for the duration of run. A run that never
// completes still ends its progress stream with an error event.
func (h *Handler) runTest(c *gin.Context, message string, run func(ctx context.Context) (interface{}, error)) {
	ctx := c.Request.Context()
	release, err := h.limiter.Acquire(ctx)
	if err != nil {
		h.failTest(c, err, message)
		return
	}
	defer release()

	result, err := run(ctx)
	if err != nil {
		h.failTest(c, err, message)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) failTest(c *gin.Context, err error, message string) {
	if key := c.Query("progress"); key != "" && h.hub != nil {
		h.hub.Broadcast(ProgressEvent{
			RunKey:    key,
			EventType: EventError,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
	}
	h.fail(c, err, message)
}

func (h *Handler) handleBusinesses(c *gin.Context) {
	businesses, err := h.services.Retail.Businesses(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list businesses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": businesses})
}

func (h *Handler) handleMonthly(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}
	window, ok := h.intQuery(c, "window", app.DefaultMovingAverageWindow)
	if !ok {
		return
	}
	series, err := h.services.Retail.Monthly(c.Request.Context(), business, window)
	if err != nil {
		h.fail(c, err, "failed to load monthly sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business, "window": window, "series": series})
}

func (h *Handler) handleIndex(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}
	index, err := h.services.Retail.Index(c.Request.Context(), business)
	if err != nil {
		h.fail(c, err, "failed to load index evolution")
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business, "index": index})
}

func (h *Handler) handleGrowth(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}
	growth, err := h.services.Retail.Growth(c.Request.Context(), business)
	if err != nil {
		h.fail(c, err, "failed to load yearly growth")
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business, "growth": growth})
}

func (h *Handler) handleAutocorrelation(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}
	lags, ok := h.intQuery(c, "lags", 0)
	if !ok {
		return
	}
	result, err := h.services.Retail.Autocorrelation(c.Request.Context(), business, lags)
	if err != nil {
		h.fail(c, err, "failed to compute autocorrelation")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) handleSeasonality(c *gin.Context) {
	business, ok := h.business(c)
	if !ok {
		return
	}
	table, err := h.services.Retail.Seasonality(c.Request.Context(), business)
	if err != nil {
		h.fail(c, err, "failed to compute seasonality")
		return
	}
	c.JSON(http.StatusOK, gin.H{"business": business, "seasonality": table})
}

func (h *Handler) handleLaptops(c *gin.Context) {
	bins, ok := h.intQuery(c, "bins", app.DefaultConfigurationBins)
	if !ok {
		return
	}
	report, err := h.services.Laptops.Report(c.Request.Context(), bins)
	if err != nil {
		h.fail(c, err, "failed to build laptop report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) handleMowers(c *gin.Context) {
	income, ok := h.floatQuery(c, "income", app.DefaultIncomeLine)
	if !ok {
		return
	}
	lotSize, ok := h.floatQuery(c, "lot_size", app.DefaultLotSizeLine)
	if !ok {
		return
	}
	report, err := h.services.Mowers.Report(c.Request.Context(), income, lotSize)
	if err != nil {
		h.fail(c, err, "failed to build mower report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// bind decodes an optional JSON body; an empty body keeps the defaults
func (h *Handler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !stderrors.Is(err, io.EOF) {
		h.failTest(c, errors.InvalidInput("malformed request body: "+err.Error()), "invalid request")
		return false
	}
	return true
}

func (h *Handler) progress(c *gin.Context) func(completed, total int) {
	key := c.Query("progress")
	if key == "" || h.hub == nil {
		return nil
	}
	return NewProgressReporter(h.hub, key)
}

func (h *Handler) business(c *gin.Context) (string, bool) {
	business, err := h.services.Retail.ResolveBusiness(c.Request.Context(), c.Query("business"))
	if err != nil {
		h.fail(c, err, "failed to resolve business")
		return "", false
	}
	return business, true
}

func (h *Handler) intQuery(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		h.fail(c, errors.InvalidInput(key+" must be an integer"), "invalid query")
		return 0, false
	}
	return v, true
}

func (h *Handler) floatQuery(c *gin.Context, key string, fallback float64) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.fail(c, errors.InvalidInput(key+" must be a number"), "invalid query")
		return 0, false
	}
	return v, true
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	wrapped := errors.Wrap(err, message)
	status := errors.HTTPStatus(wrapped)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, wrapped)
	} else {
		h.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, wrapped)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": wrapped.Error(), "code": errors.GetCode(wrapped)})
}
