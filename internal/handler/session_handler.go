package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidrecon/internal/domain"
	"bidrecon/internal/middleware"
	"bidrecon/internal/port"
)

// sessionStatus is the trimmed session view returned by Status: item counts
// and score headlines, not the full line-item payload.
type sessionStatus struct {
	SessionID   string                 `json:"session_id"`
	ProjectInfo domain.ProjectInfo     `json:"project_info"`
	RFPItems    int                    `json:"rfp_items"`
	BidItems    int                    `json:"bid_items"`
	PlanItems   int                    `json:"plan_items"`
	Documents   []domain.DocumentMeta  `json:"documents"`
	Report      *domain.AnalysisReport `json:"report,omitempty"`
}

// SessionHandler handles session lifecycle endpoints.
type SessionHandler struct {
	sessions port.SessionStore
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions port.SessionStore) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Status handles GET /api/v1/session
func (h *SessionHandler) Status(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "NO_SESSION", "missing session context")
		return
	}

	state, err := h.sessions.GetOrCreate(c.Request.Context(), sessionID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, sessionStatus{
		SessionID:   state.ID,
		ProjectInfo: state.ProjectInfo,
		RFPItems:    len(state.RFPItems),
		BidItems:    len(state.BidItems),
		PlanItems:   len(state.PlanItems),
		Documents:   state.Documents,
		Report:      state.Report,
	})
}

// Clear handles DELETE /api/v1/session
func (h *SessionHandler) Clear(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "NO_SESSION", "missing session context")
		return
	}

	if err := h.sessions.Clear(c.Request.Context(), sessionID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"cleared": true})
}
