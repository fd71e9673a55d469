package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scottshadow56/Precision-N-back/internal/config"
	"github.com/scottshadow56/Precision-N-back/internal/engine"
	"github.com/scottshadow56/Precision-N-back/internal/models"
	"github.com/scottshadow56/Precision-N-back/internal/repository"
)

// SessionHandler owns the active training sessions, one per user at most.
// The engine callbacks persist a record and adapt the stored thresholds only
// when a session runs to completion.
type SessionHandler struct {
	log     *zap.Logger
	presets *models.PresetList

	mu        sync.Mutex
	active    map[uint]*engine.Scheduler
	settings  map[uint]models.SessionSettings
	summaries map[uint]*engine.Summary
}

func NewSessionHandler(log *zap.Logger, presets *models.PresetList) *SessionHandler {
	return &SessionHandler{
		log:       log,
		presets:   presets,
		active:    make(map[uint]*engine.Scheduler),
		settings:  make(map[uint]models.SessionSettings),
		summaries: make(map[uint]*engine.Summary),
	}
}

type startSessionRequest struct {
	Preset     string   `json:"preset"`
	NLevel     *int     `json:"nLevel,omitempty"`
	TrialCount *int     `json:"trialCount,omitempty"`
	MatchRate  *float64 `json:"matchRate,omitempty"`
	LureRate   *float64 `json:"lureRate,omitempty"`
	Modalities []string `json:"modalities,omitempty"`
	SingleHue  *bool    `json:"singleHue,omitempty"`
	VarLag     *bool    `json:"variableLag,omitempty"`
	VarISI     *bool    `json:"variableInterval,omitempty"`
	Seed       *int64   `json:"seed,omitempty"`
}

// Start begins a new session from a preset plus optional overrides.
func (h *SessionHandler) Start(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	presetID := req.Preset
	if presetID == "" {
		presetID = config.Conf.Engine.DefaultPreset
	}
	preset, ok := h.presets.ByID(presetID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown preset"})
		return
	}

	thresholds, err := repository.GetThresholds(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("Failed to load thresholds", zap.Error(err), zap.Uint("userID", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load thresholds"})
		return
	}

	settings := preset.Settings(thresholds, models.AdaptPolicy(config.Conf.Engine.AdaptPolicy))
	applyOverrides(&settings, req)

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, running := h.active[user.ID]; running {
		c.JSON(http.StatusConflict, gin.H{"error": "A session is already running"})
		return
	}

	userID := user.ID
	sched, err := engine.NewScheduler(settings, rng, h.log, engine.Callbacks{
		OnSessionEnd: func(sum engine.Summary) { h.sessionEnded(userID, settings, sum) },
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.active[userID] = sched
	h.settings[userID] = settings
	delete(h.summaries, userID)

	if err := sched.Start(); err != nil {
		delete(h.active, userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings, "preset": presetID})
}

// State exposes the renderer-facing view of the running session.
func (h *SessionHandler) State(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sched := h.scheduler(user.ID)
	if sched == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}

	ev, visible, done, total, state := sched.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"event":   ev,
		"visible": visible,
		"trial":   done,
		"total":   total,
		"state":   state,
	})
}

type respondRequest struct {
	Modality string `json:"modality"`
}

// Respond forwards a modality key press into the engine. Fire-and-forget:
// duplicate or out-of-window responses are silently ignored there.
func (h *SessionHandler) Respond(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	modality := models.Modality(req.Modality)
	if !modality.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown modality"})
		return
	}

	sched := h.scheduler(user.ID)
	if sched == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}

	sched.Respond(modality)
	c.Status(http.StatusOK)
}

// Quit aborts the running session. No record is persisted for aborts.
func (h *SessionHandler) Quit(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sched := h.scheduler(user.ID)
	if sched == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session"})
		return
	}

	sched.Quit()
	c.Status(http.StatusOK)
}

// Summary returns the last finished session's summary.
func (h *SessionHandler) Summary(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	h.mu.Lock()
	sum := h.summaries[user.ID]
	h.mu.Unlock()

	if sum == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No finished session"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// sessionEnded is the terminal engine callback: it runs once per session,
// off the request goroutine.
func (h *SessionHandler) sessionEnded(userID uint, settings models.SessionSettings, sum engine.Summary) {
	h.mu.Lock()
	delete(h.active, userID)
	delete(h.settings, userID)
	h.summaries[userID] = &sum
	h.mu.Unlock()

	if !sum.Completed {
		h.log.Info("Session aborted, no record saved", zap.Uint("userID", userID))
		return
	}

	ctx := context.Background()
	if _, err := repository.SaveSessionRecord(ctx, userID, settings, sum); err != nil {
		h.log.Error("Failed to save session record", zap.Error(err), zap.Uint("userID", userID))
	}

	adapted := engine.AdaptThresholds(settings, sum.Score)
	if err := repository.SaveThresholds(ctx, userID, adapted); err != nil {
		h.log.Error("Failed to save adapted thresholds", zap.Error(err), zap.Uint("userID", userID))
	}
}

func (h *SessionHandler) scheduler(userID uint) *engine.Scheduler {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active[userID]
}

func applyOverrides(settings *models.SessionSettings, req startSessionRequest) {
	if req.NLevel != nil {
		settings.NLevel = *req.NLevel
	}
	if req.TrialCount != nil {
		settings.TrialCount = *req.TrialCount
	}
	if req.MatchRate != nil {
		settings.MatchRate = *req.MatchRate
	}
	if req.LureRate != nil {
		settings.LureRate = *req.LureRate
	}
	if len(req.Modalities) > 0 {
		modalities := make([]models.Modality, 0, len(req.Modalities))
		for _, m := range req.Modalities {
			modalities = append(modalities, models.Modality(m))
		}
		settings.Modalities = modalities
	}
	if req.SingleHue != nil {
		settings.SingleHue = *req.SingleHue
	}
	if req.VarLag != nil {
		settings.VariableLag = *req.VarLag
	}
	if req.VarISI != nil {
		settings.VariableInterval = *req.VarISI
	}
}

// currentUser pulls the user loaded by the router middleware, nil for guests.
func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
