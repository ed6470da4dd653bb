package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/progress"
	"github.com/lexiscreen/screening-backend/internal/requestdata"
	"github.com/lexiscreen/screening-backend/internal/services"
)

type TestSessionHandler struct {
	sessionService services.TestSessionService
}

func NewTestSessionHandler(sessionService services.TestSessionService) *TestSessionHandler {
	return &TestSessionHandler{sessionService: sessionService}
}

// POST /api/test-session
func (h *TestSessionHandler) StartSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	session, err := h.sessionService.StartSession(c.Request.Context(), rd.ProfileID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, session)
}

// GET /api/test-session
func (h *TestSessionHandler) ListSessions(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	sessions, err := h.sessionService.ListSessions(c.Request.Context(), rd.ProfileID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, sessions)
}

// GET /api/test-session/:id
func (h *TestSessionHandler) GetSession(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid session id"))
		return
	}
	session, err := h.sessionService.GetSession(c.Request.Context(), rd.ProfileID, sessionID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, session)
}

// POST /api/test-session/:id/category
func (h *TestSessionHandler) StartCategory(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid session id"))
		return
	}
	var req struct {
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid request body"))
		return
	}
	category, err := progress.ParseCategory(req.Category)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	categoryTest, err := h.sessionService.StartCategory(c.Request.Context(), rd.ProfileID, sessionID, category)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"id":                   categoryTest.ID,
		"test_session_id":      categoryTest.TestSessionID,
		"category":             categoryTest.Category,
		"next_sub_question_id": categoryTest.Progress,
	})
}

// POST /api/test-session/:id/submit
func (h *TestSessionHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid session id"))
		return
	}
	var req struct {
		Category      string         `json:"category"`
		SubQuestionID string         `json:"sub_question_id"`
		StartTime     time.Time      `json:"start_time"`
		EndTime       time.Time      `json:"end_time"`
		Correct       *bool          `json:"correct"`
		Payload       datatypes.JSON `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid request body"))
		return
	}
	category, err := progress.ParseCategory(req.Category)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	categoryTest, err := h.sessionService.Submit(c.Request.Context(), rd.ProfileID, sessionID,
		category, progress.Stage(req.SubQuestionID), services.SubmitFeatures{
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Correct:   req.Correct,
			Payload:   req.Payload,
		})
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"category":             categoryTest.Category,
		"next_sub_question_id": categoryTest.Progress,
	})
}

// POST /api/test-session/:id/rating
func (h *TestSessionHandler) SubmitRating(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, apierr.CodeMissingCredentials, errors.New("missing identity"))
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid session id"))
		return
	}
	var req struct {
		Category string `json:"category"`
		Rating   int    `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, errors.New("invalid request body"))
		return
	}
	category, err := progress.ParseCategory(req.Category)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	categoryTest, err := h.sessionService.SubmitRating(c.Request.Context(), rd.ProfileID, sessionID, category, req.Rating)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"category": categoryTest.Category,
		"progress": categoryTest.Progress,
		"rating":   categoryTest.Rating,
	})
}
