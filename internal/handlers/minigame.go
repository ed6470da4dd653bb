package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/requestdata"
	"github.com/lexiscreen/screening-backend/internal/services"
	"github.com/lexiscreen/screening-backend/internal/types"
)

type MinigameHandler struct {
	minigameService services.MinigameService
}

func NewMinigameHandler(minigameService services.MinigameService) *MinigameHandler {
	return &MinigameHandler{minigameService: minigameService}
}

// POST /api/minigame
func (h *MinigameHandler) SubmitAttempt(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	var req struct {
		MinigameNumber types.MinigameNumber `json:"minigame_number"`
		Score          float64              `json:"score"`
		Details        datatypes.JSON       `json:"details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid request body"))
		return
	}
	attempt, err := h.minigameService.SubmitAttempt(c.Request.Context(), rd.ProfileID, req.MinigameNumber, req.Score, req.Details)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, attempt)
}

// GET /api/minigame
func (h *MinigameHandler) ListAttempts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	var number *types.MinigameNumber
	if raw := c.Query("minigame_number"); raw != "" {
		n := types.MinigameNumber(raw)
		if !types.ValidMinigameNumber(n) {
			RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid minigame number"))
			return
		}
		number = &n
	}
	attempts, err := h.minigameService.ListAttempts(c.Request.Context(), rd.ProfileID, number)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, attempts)
}
