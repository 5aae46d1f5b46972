package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labfund/fundops/internal/ledger"
	"github.com/labfund/fundops/internal/wizard"
	"github.com/labfund/fundops/internal/workspace"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	wizard.View
}

type jumpRequest struct {
	Step *int `json:"step" binding:"required"`
}

type depositRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// writeWizardError maps session and wizard errors onto status codes.
func writeWizardError(c *gin.Context, err error) {
	var stepErr *wizard.StepError
	switch {
	case errors.Is(err, workspace.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrUnknownKind):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &stepErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":        err.Error(),
			"step":         stepErr.Step,
			"title":        stepErr.Title,
			"field_errors": stepErr.FieldErrors,
		})
	case errors.Is(err, wizard.ErrStepLocked), errors.Is(err, wizard.ErrStepRange), errors.Is(err, ledger.ErrDepositClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrUnsupported), errors.Is(err, wizard.ErrUnknownDeposit):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (a Api) writeSession(c *gin.Context, code int, sid string, s wizard.Session) {
	v, err := s.View()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(code, sessionResponse{SessionID: sid, View: v})
}

// session looks up the :id session, writing a 404 when it is not open.
func (a Api) session(c *gin.Context) (string, wizard.Session, bool) {
	sid := c.Param("id")
	s, err := a.ws.Session(sid)
	if err != nil {
		writeWizardError(c, err)
		return "", nil, false
	}
	return sid, s, true
}

// CreateWizardSession starts a session, or resumes the one named by the
// session_id query parameter from its draft.
func (a Api) CreateWizardSession(c *gin.Context) {
	sid, s, err := a.ws.StartSession(c.Param("kind"), c.Query("session_id"))
	if err != nil {
		writeWizardError(c, err)
		return
	}
	a.writeSession(c, http.StatusCreated, sid, s)
}

func (a Api) GetSession(c *gin.Context) {
	sid, s, ok := a.session(c)
	if !ok {
		return
	}
	a.writeSession(c, http.StatusOK, sid, s)
}

// CloseSession saves the draft and closes the session; it can be resumed.
func (a Api) CloseSession(c *gin.Context) {
	if err := a.ws.CloseSession(c.Param("id")); err != nil {
		writeWizardError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a Api) PatchSessionForm(c *gin.Context) {
	sid, s, ok := a.session(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Patch(body); err != nil {
		writeWizardError(c, err)
		return
	}
	a.writeSession(c, http.StatusOK, sid, s)
}

func (a Api) NextStep(c *gin.Context) {
	sid, s, ok := a.session(c)
	if !ok {
		return
	}
	if err := s.Next(); err != nil {
		writeWizardError(c, err)
		return
	}
	a.writeSession(c, http.StatusOK, sid, s)
}

func (a Api) PreviousStep(c *gin.Context) {
	sid, s, ok := a.session(c)
	if !ok {
		return
	}
	s.Back()
	a.writeSession(c, http.StatusOK, sid, s)
}

func (a Api) JumpToStep(c *gin.Context) {
	sid, s, ok := a.session(c)
	if !ok {
		return
	}
	var req jumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.JumpTo(*req.Step); err != nil {
		writeWizardError(c, err)
		return
	}
	a.writeSession(c, http.StatusOK, sid, s)
}

func (a Api) GetSessionDeposits(c *gin.Context) {
	_, s, ok := a.session(c)
	if !ok {
		return
	}
	ranked, err := s.Candidates()
	if err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, ranked)
}

func (a Api) SelectSessionDeposit(c *gin.Context) {
	sid, s, ok := a.session(c)
	if !ok {
		return
	}
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.SelectDeposit(req.Reference); err != nil {
		writeWizardError(c, err)
		return
	}
	a.writeSession(c, http.StatusOK, sid, s)
}

func (a Api) SetSessionAccount(c *gin.Context) {
	_, s, ok := a.session(c)
	if !ok {
		return
	}
	var req validateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.SetAccountNumber(req.AccountNumber)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a Api) SubmitSession(c *gin.Context) {
	entry, err := a.ws.SubmitSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
