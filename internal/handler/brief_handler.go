package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"NewsBrief/internal/app"
	"NewsBrief/internal/config"
	"NewsBrief/internal/domain"
)

type BriefRunner interface {
	Run(ctx context.Context, params app.QueryParams) (domain.Brief, error)
}

type BriefHandler struct {
	runner BriefRunner
	logger *slog.Logger
}

func NewBriefHandler(runner BriefRunner, logger *slog.Logger) *BriefHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BriefHandler{runner: runner, logger: logger}
}

// Register mounts the brief routes on r.
func (h *BriefHandler) Register(r gin.IRoutes) {
	r.GET("/brief", h.GetBrief)
	r.GET("/health", h.GetHealth)
}

// ToBriefResponse flattens a brief for JSON callers.
func ToBriefResponse(b domain.Brief) BriefResponse {
	res := BriefResponse{
		RunID:     b.RunID,
		Topic:     b.Query.Topic,
		Title:     b.Editorial.Title,
		Body:      b.Editorial.Body,
		Text:      b.Text(),
		NoContent: b.NoContent,
		Records:   b.Records,
		Usage: UsageResponse{
			PromptTokens:     b.Usage.PromptTokens,
			CompletionTokens: b.Usage.CompletionTokens,
			TotalTokens:      b.Usage.TotalTokens,
			TotalCost:        b.Usage.TotalCost,
			RequestCount:     b.Usage.RequestCount,
		},
		Sources:     make([]SourceResponse, 0, len(b.Sources)),
		GeneratedAt: b.GeneratedAt.Format(time.RFC3339),
	}
	for _, col := range b.Sources {
		src := SourceResponse{Source: col.Source, Status: string(col.Status), Targets: len(col.Targets)}
		if col.Err != nil {
			src.Error = col.Err.Error()
		}
		res.Sources = append(res.Sources, src)
	}
	return res
}

func (h *BriefHandler) GetBrief(c *gin.Context) {
	params := app.QueryParams{
		Topic:  c.Query("topic"),
		State:  c.Query("state"),
		City:   c.Query("city"),
		Source: c.Query("source"),
		Limit:  config.IntOrDefault(c.Query("limit"), 0),
		Days:   config.IntOrDefault(c.Query("days"), 0),
	}
	if (params.State == "") != (params.City == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state and city must be given together"})
		return
	}

	brief, err := h.runner.Run(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("error building brief", "topic", params.Topic, "run_id", brief.RunID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Brief generation failed"})
		return
	}

	c.JSON(http.StatusOK, ToBriefResponse(brief))
}

func (h *BriefHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
