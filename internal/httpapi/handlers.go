package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aurasys/reflex-engine/internal/biometric"
	"github.com/aurasys/reflex-engine/internal/insight"
	"github.com/aurasys/reflex-engine/internal/intent"
	"github.com/aurasys/reflex-engine/internal/reflex"
	"github.com/aurasys/reflex-engine/internal/tags"
)

// #region handlers-struct

// Handlers exposes the engine over HTTP. The engine does its own
// locking, so handlers are stateless.
type Handlers struct {
	engine *reflex.Engine
	log    *zap.Logger
}

// NewHandlers creates handlers around an engine.
func NewHandlers(engine *reflex.Engine, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{engine: engine, log: log}
}

// #endregion handlers-struct

// #region command

// HandleCommand handles POST /v1/command for mirror and edit input.
func (h *Handlers) HandleCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	mode := intent.EntryMode(req.EntryMode)
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown entry mode", Code: "INVALID_ENTRY_MODE"})
		return
	}

	res, err := h.engine.ProcessCommand(reflex.Command{
		UserID:        req.UserID,
		EntryMode:     mode,
		RawInput:      req.RawInput,
		TargetElement: req.TargetElement,
	})
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	h.log.Debug("command processed",
		zap.String("user", req.UserID),
		zap.String("entry_mode", req.EntryMode),
		zap.Bool("applied", res.Applied))
	c.JSON(http.StatusOK, res)
}

// HandleSignals handles POST /v1/signals for passive-tier batches.
func (h *Handlers) HandleSignals(c *gin.Context) {
	var req SignalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	res, err := h.engine.ProcessSignals(req.UserID, req.Readings)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleRevert handles POST /v1/revert.
func (h *Handlers) HandleRevert(c *gin.Context) {
	var req RevertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	res, err := h.engine.Revert(req.UserID)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// #endregion command

// #region user-state

// HandleLayout handles GET /v1/users/:user_id/layout.
func (h *Handlers) HandleLayout(c *gin.Context) {
	state, err := h.engine.LayoutState(c.Param("user_id"))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"elements": state})
}

// HandleGetSettings handles GET /v1/users/:user_id/settings.
func (h *Handlers) HandleGetSettings(c *gin.Context) {
	s, err := h.engine.Settings(c.Param("user_id"))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// HandlePutSettings handles PUT /v1/users/:user_id/settings.
func (h *Handlers) HandlePutSettings(c *gin.Context) {
	var s reflex.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	if err := h.engine.UpdateSettings(c.Param("user_id"), s); err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// HandleToggleTier handles POST /v1/users/:user_id/tiers.
func (h *Handlers) HandleToggleTier(c *gin.Context) {
	var req TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	if err := h.engine.ToggleTier(c.Param("user_id"), reflex.Tier(req.Tier), *req.Enabled); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TIER"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tier": req.Tier, "enabled": *req.Enabled})
}

// #endregion user-state

// #region insights

// HandleEnableInsights handles POST /v1/users/:user_id/insights/enable.
func (h *Handlers) HandleEnableInsights(c *gin.Context) {
	if err := h.engine.EnableInsights(c.Param("user_id")); err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wellness_insights_enabled": true})
}

// HandleGetInsight handles GET /v1/users/:user_id/insights/:type.
func (h *Handlers) HandleGetInsight(c *gin.Context) {
	ins, ok, err := h.engine.Insight(c.Param("user_id"), insight.Type(c.Param("type")))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no insight available", Code: "NO_INSIGHT"})
		return
	}
	c.JSON(http.StatusOK, ins)
}

// HandleExport handles GET /v1/users/:user_id/export.
func (h *Handlers) HandleExport(c *gin.Context) {
	export, err := h.engine.ExportUserData(c.Param("user_id"))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, export)
}

// #endregion insights

// #region errors

// writeEngineError maps engine error types to HTTP responses.
func (h *Handlers) writeEngineError(c *gin.Context, err error) {
	var tierErr *reflex.TierDisabledError
	var tagErr *tags.UnknownTagError
	var valErr *biometric.ValidationError

	switch {
	case errors.As(err, &tierErr):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "TIER_DISABLED"})
	case errors.As(err, &tagErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "UNKNOWN_TAG"})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_READING"})
	default:
		h.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
	}
}

// #endregion errors
