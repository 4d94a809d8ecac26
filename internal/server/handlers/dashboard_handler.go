package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropdash/internal/domain/models"
	"github.com/mamadbah2/cropdash/internal/service/phenology"
)

// ErrInvalidForm indicates a form field could not be coerced.
var ErrInvalidForm = errors.New("invalid form value")

// Renderer produces a dashboard from one set of form inputs.
type Renderer interface {
	Render(ctx context.Context, in models.DashboardInput) models.Dashboard
}

// DashboardHandler adapts HTTP form submissions to the dashboard pipeline.
type DashboardHandler struct {
	pipeline       Renderer
	defaultCity    string
	uploadMaxBytes int64
	logger         *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(pipeline Renderer, defaultCity string, uploadMaxBytes int64, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{
		pipeline:       pipeline,
		defaultCity:    defaultCity,
		uploadMaxBytes: uploadMaxBytes,
		logger:         logger,
	}
}

// Defaults returns the pre-filled form for a given stage count.
func (h *DashboardHandler) Defaults(c *gin.Context) {
	count, err := parseStageCount(c.Query("stage_count"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stage_count": count,
		"min_stages":  phenology.MinStages,
		"max_stages":  phenology.MaxStages,
		"stages":      phenology.DefaultStageInputs(count),
		"city":        h.defaultCity,
	})
}

// Render runs one dashboard pass for the submitted form and optional upload.
func (h *DashboardHandler) Render(c *gin.Context) {
	if c.Request.ContentLength > h.uploadMaxBytes {
		h.logger.Warn("upload rejected", zap.Int64("content_length", c.Request.ContentLength), zap.Int64("limit", h.uploadMaxBytes))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadMaxBytes)

	if err := c.Request.ParseMultipartForm(h.uploadMaxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("upload rejected", zap.Int64("limit", tooLarge.Limit))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		h.logger.Warn("invalid form submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	stages, err := parseStages(c)
	if err != nil {
		h.logger.Warn("invalid stage form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := models.DashboardInput{
		Stages: stages,
		Harvest: models.HarvestSource{
			SheetRange: strings.TrimSpace(c.PostForm("harvest_range")),
		},
		Weather: models.WeatherQuery{
			APIKey: c.PostForm("api_key"),
			City:   c.PostForm("city"),
		},
	}

	fileHeader, err := c.FormFile("harvest")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			h.logger.Error("failed opening upload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read upload"})
			return
		}
		defer func() { _ = file.Close() }()
		in.Harvest.Upload = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.logger.Warn("invalid upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload"})
		return
	}

	c.JSON(http.StatusOK, h.pipeline.Render(c.Request.Context(), in))
}

func parseStageCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return phenology.DefaultStageCount, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: stage_count %q", ErrInvalidForm, raw)
	}
	return phenology.ClampStageCount(n), nil
}

func parseStages(c *gin.Context) ([]models.StageInput, error) {
	count, err := parseStageCount(c.PostForm("stage_count"))
	if err != nil {
		return nil, err
	}

	stages := make([]models.StageInput, 0, count)
	for i := 1; i <= count; i++ {
		stage := phenology.DefaultStageInput(i)

		// Text fields only default when absent; a cleared name stays empty.
		if v, ok := c.GetPostForm(fmt.Sprintf("stage_name_%d", i)); ok {
			stage.Name = v
		}
		if v, ok := c.GetPostForm(fmt.Sprintf("stage_days_%d", i)); ok {
			stage.DayRange = v
		}

		field := fmt.Sprintf("stage_fertilizer_%d", i)
		if v := strings.TrimSpace(c.PostForm(field)); v != "" {
			kg, err := strconv.Atoi(v)
			if err != nil || kg < 0 {
				return nil, fmt.Errorf("%w: %s must be a non-negative whole number of kg", ErrInvalidForm, field)
			}
			stage.FertilizerKg = kg
		}

		stages = append(stages, stage)
	}
	return stages, nil
}
