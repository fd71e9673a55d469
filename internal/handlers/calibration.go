package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scottshadow56/Precision-N-back/internal/engine"
	"github.com/scottshadow56/Precision-N-back/internal/models"
	"github.com/scottshadow56/Precision-N-back/internal/repository"
)

// Stimulus domain used for calibration probes. Calibration has no trial
// loop, so only the generation parameters matter.
var calibrationSettings = models.SessionSettings{
	NLevel:           1,
	TrialCount:       1,
	GridRows:         3,
	GridCols:         3,
	VertexCount:      8,
	StimulusDuration: 500 * time.Millisecond,
	Interval:         time.Second,
}

// CalibrationHandler owns the per-user staircase runs, one at a time. A run
// that finishes (by rule or manual end) merges its single-modality threshold
// into the user's stored map; the other modalities keep their values.
type CalibrationHandler struct {
	log *zap.Logger

	mu     sync.Mutex
	active map[uint]*engine.Calibrator
}

func NewCalibrationHandler(log *zap.Logger) *CalibrationHandler {
	return &CalibrationHandler{
		log:    log,
		active: make(map[uint]*engine.Calibrator),
	}
}

type startCalibrationRequest struct {
	Modality string `json:"modality"`
	Variant  string `json:"variant,omitempty"` // "converging" (default) or "ascending"
}

func (h *CalibrationHandler) Start(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req startCalibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	modality := models.Modality(req.Modality)
	if !modality.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown modality"})
		return
	}
	variant := engine.StaircaseConverging
	if req.Variant == string(engine.StaircaseAscending) {
		variant = engine.StaircaseAscending
	}

	thresholds, err := repository.GetThresholds(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to load thresholds", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load thresholds"})
		return
	}

	settings := calibrationSettings
	settings.Modalities = []models.Modality{modality}
	settings.Thresholds = thresholds

	userID := user.ID
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cal, err := engine.NewCalibrator(modality, variant, settings, rng, h.log, func(partial models.Thresholds) {
		h.calibrationComplete(userID, partial)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.active[userID] = cal
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"modality":  modality,
		"variant":   variant,
		"threshold": cal.Threshold(),
	})
}

func (h *CalibrationHandler) Trial(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cal := h.calibrator(user.ID)
	if cal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No calibration in progress"})
		return
	}

	trial, err := cal.NextTrial()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trial)
}

type calibrationAnswerRequest struct {
	Response string `json:"response"` // "same" or "different"
}

func (h *CalibrationHandler) Answer(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req calibrationAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Response != "same" && req.Response != "different" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Response must be \"same\" or \"different\""})
		return
	}

	cal := h.calibrator(user.ID)
	if cal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No calibration in progress"})
		return
	}

	correct, done := cal.Answer(req.Response == "same")
	if done {
		h.mu.Lock()
		delete(h.active, user.ID)
		h.mu.Unlock()
	}

	c.JSON(http.StatusOK, gin.H{
		"correct":   correct,
		"done":      done,
		"threshold": cal.Threshold(),
	})
}

// End abandons the run, keeping the threshold accumulated so far.
func (h *CalibrationHandler) End(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.mu.Lock()
	cal := h.active[user.ID]
	delete(h.active, user.ID)
	h.mu.Unlock()

	if cal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No calibration in progress"})
		return
	}

	partial := cal.End()
	c.JSON(http.StatusOK, gin.H{"thresholds": partial})
}

// calibrationComplete persists the partial threshold map. Merge semantics
// live in the repository: only this modality's row changes.
func (h *CalibrationHandler) calibrationComplete(userID uint, partial models.Thresholds) {
	if err := repository.SaveThresholds(context.Background(), userID, partial); err != nil {
		h.log.Error("Failed to save calibrated threshold", zap.Error(err), zap.Uint("userID", userID))
		return
	}
	h.log.Info("Calibration saved", zap.Uint("userID", userID), zap.Int("modalities", len(partial)))
}

func (h *CalibrationHandler) calibrator(userID uint) *engine.Calibrator {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active[userID]
}
