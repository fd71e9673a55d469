// internal/handlers/results.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/scottshadow56/Precision-N-back/internal/repository"
)

type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

// History returns the user's completed sessions, newest first.
func (h *ResultsHandler) History(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := repository.GetSessionRecords(c.Request.Context(), user.ID, 100)
	if err != nil {
		h.log.Error("Failed to load session records", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}

// Chart renders a standalone timeline chart page for one metric.
func (h *ResultsHandler) Chart(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	metricKey := c.DefaultQuery("metric", "accuracy")
	if !repository.TimelineMetricValid(metricKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown metric"})
		return
	}

	data, err := repository.GetTimelineData(c.Request.Context(), user.ID, metricKey)
	if err != nil {
		h.log.Error("Failed to get timeline data", zap.Error(err), zap.String("metricKey", metricKey))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load timeline data"})
		return
	}

	metricLabel := strings.Title(strings.ReplaceAll(metricKey, "_", " "))
	line := generateTimelineChart(data, metricLabel)

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		h.log.Error("Failed to render chart", zap.Error(err))
	}
}

// Thresholds returns the user's current calibrated thresholds.
func (h *ResultsHandler) Thresholds(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	values, err := repository.GetThresholdValues(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to load thresholds", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load thresholds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"thresholds": values})
}

func generateTimelineChart(data []repository.TimelineDataPoint, metricLabel string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Training Progress",
			Subtitle: metricLabel,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0)
	for _, point := range data {
		items = append(items, opts.LineData{Value: []interface{}{point.Date, point.Value}})
	}

	line.AddSeries(metricLabel, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
