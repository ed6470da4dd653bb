package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/requestdata"
	"github.com/lexiscreen/screening-backend/internal/services"
	"github.com/lexiscreen/screening-backend/internal/types"
)

// AccountHandler covers the account-context surface: profile CRUD and
// profile selection. These routes accept tokens without a profile claim.
type AccountHandler struct {
	authService    services.AuthService
	profileService services.ProfileService
}

func NewAccountHandler(authService services.AuthService, profileService services.ProfileService) *AccountHandler {
	return &AccountHandler{authService: authService, profileService: profileService}
}

// POST /api/account/profiles
func (h *AccountHandler) CreateProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	var req struct {
		ProfileType types.ProfileType `json:"profile_type"`
		Name        string            `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid request body"))
		return
	}
	profile, err := h.profileService.CreateProfile(c.Request.Context(), rd.AccountID, req.ProfileType, req.Name)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, profile)
}

// GET /api/account/profiles
func (h *AccountHandler) ListProfiles(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	profiles, err := h.profileService.ListProfiles(c.Request.Context(), rd.AccountID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, profiles)
}

// GET /api/account/profiles/:id
func (h *AccountHandler) GetProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid profile id"))
		return
	}
	profile, err := h.profileService.GetProfile(c.Request.Context(), rd.AccountID, profileID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, profile)
}

// PUT /api/account/profiles/:id
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid profile id"))
		return
	}
	var req struct {
		Name              *string       `json:"name"`
		YearOfBirth       *int          `json:"year_of_birth"`
		Gender            *types.Gender `json:"gender"`
		MotherTongue      *string       `json:"mother_tongue"`
		OfficialDiagnosis *bool         `json:"official_diagnosis"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid request body"))
		return
	}
	profile, err := h.profileService.UpdateProfile(c.Request.Context(), rd.AccountID, profileID, services.ProfileUpdate{
		Name:              req.Name,
		YearOfBirth:       req.YearOfBirth,
		Gender:            req.Gender,
		MotherTongue:      req.MotherTongue,
		OfficialDiagnosis: req.OfficialDiagnosis,
	})
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, profile)
}

// DELETE /api/account/profiles/:id
func (h *AccountHandler) DeleteProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid profile id"))
		return
	}
	if err := h.profileService.DeleteProfile(c.Request.Context(), rd.AccountID, profileID); err != nil {
		RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/account/profiles/:id/select
func (h *AccountHandler) SelectProfile(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid profile id"))
		return
	}
	accessToken, err := h.authService.SelectProfile(c.Request.Context(), rd.AccountID, profileID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
		"expires_in":   int(h.authService.AccessTTL().Seconds()),
	})
}
