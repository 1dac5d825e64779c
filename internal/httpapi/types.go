package httpapi

import (
	"github.com/aurasys/reflex-engine/internal/biometric"
)

// #region requests

// CommandRequest is the body for POST /v1/command.
type CommandRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	EntryMode     string `json:"entry_mode" binding:"required"`
	RawInput      string `json:"raw_input"`
	TargetElement string `json:"target_element"`
}

// SignalsRequest is the body for POST /v1/signals.
type SignalsRequest struct {
	UserID   string              `json:"user_id" binding:"required"`
	Readings []biometric.Reading `json:"readings" binding:"required"`
}

// RevertRequest is the body for POST /v1/revert.
type RevertRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// TierRequest is the body for POST /v1/users/:user_id/tiers.
type TierRequest struct {
	Tier    string `json:"tier" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// #endregion requests

// #region responses

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// #endregion responses
